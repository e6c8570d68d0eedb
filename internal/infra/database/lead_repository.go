package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/niveshpath/advisory-backend/internal/entity"
	"github.com/niveshpath/advisory-backend/internal/usecase"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, name, phone, email, message,
	source, raw_source, interests, tags, consent,
	utm_source, utm_medium, utm_campaign, utm_term, utm_content, page_url, referrer,
	preferred_time_type, preferred_time_at,
	status, assigned_to, follow_up_at, last_activity_at,
	archived_at, archived_by, created_at, updated_at`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17,
		        $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`
	_, err := r.DB.ExecContext(ctx, query,
		lead.ID, lead.Name, lead.Phone, lead.Email, lead.Message,
		string(lead.Source), lead.RawSource, pq.Array(lead.Interests), pq.Array(lead.Tags), lead.Consent,
		lead.Attribution.UTMSource, lead.Attribution.UTMMedium, lead.Attribution.UTMCampaign,
		lead.Attribution.UTMTerm, lead.Attribution.UTMContent, lead.Attribution.PageURL, lead.Attribution.Referrer,
		string(lead.PreferredTimeType), lead.PreferredTimeAt,
		string(lead.Outreach.Status), lead.Outreach.AssignedTo, lead.Outreach.FollowUpAt, lead.Outreach.LastActivityAt,
		lead.ArchivedAt, lead.ArchivedBy, lead.CreatedAt, lead.UpdatedAt,
	)
	return err
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}

	notes, err := r.notesForLead(ctx, id)
	if err != nil {
		return nil, err
	}
	lead.Notes = notes
	return lead, nil
}

func (r *LeadRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeads(rows)
}

// FindRecentByPhone returns the newest active lead with this phone created
// at or after the cutoff, or nil. The read and any subsequent insert are two
// separate statements: concurrent duplicate intakes can both see nil here.
func (r *LeadRepository) FindRecentByPhone(ctx context.Context, phone string, since time.Time) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE phone = $1 AND created_at >= $2 AND archived_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`, phone, since)

	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) List(ctx context.Context, f usecase.ListLeadsFilter) ([]*entity.Lead, int, error) {
	where, args := buildLeadFilter(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM leads ` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM leads %s ORDER BY %s LIMIT %d OFFSET %d`,
		leadColumns, where, sortClause(f.Sort), f.Limit, f.Skip)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads, err := scanLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func buildLeadFilter(f usecase.ListLeadsFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch f.ArchiveMode {
	case "archived":
		conds = append(conds, "archived_at IS NOT NULL")
	case "all":
	default:
		conds = append(conds, "archived_at IS NULL")
	}

	if f.Query != "" {
		p := arg("%" + f.Query + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR phone ILIKE %s OR email ILIKE %s)", p, p, p))
	}
	if f.Status != nil {
		conds = append(conds, "status = "+arg(string(*f.Status)))
	}
	if f.Phone != "" {
		conds = append(conds, "phone = "+arg(f.Phone))
	}
	if f.Source != nil {
		conds = append(conds, "source = "+arg(string(*f.Source)))
	}
	if f.AssignedTo != nil {
		if *f.AssignedTo == "" {
			conds = append(conds, "assigned_to IS NULL")
		} else {
			conds = append(conds, "assigned_to = "+arg(*f.AssignedTo))
		}
	}
	if len(f.Interests) > 0 {
		conds = append(conds, "interests && "+arg(pq.Array(f.Interests)))
	}

	switch f.FollowUp {
	case "overdue":
		conds = append(conds, "follow_up_at IS NOT NULL AND follow_up_at < now()")
	case "today":
		conds = append(conds, "follow_up_at >= date_trunc('day', now()) AND follow_up_at < date_trunc('day', now()) + interval '1 day'")
	case "upcoming":
		conds = append(conds, "follow_up_at >= date_trunc('day', now()) + interval '1 day'")
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func sortClause(sort string) string {
	switch sort {
	case "createdAt_asc":
		return "created_at ASC"
	case "lastActivity_desc":
		return "last_activity_at DESC"
	case "followUp_asc":
		return "follow_up_at ASC NULLS LAST"
	default:
		return "created_at DESC"
	}
}

func (r *LeadRepository) UpdateOutreach(ctx context.Context, id string, o entity.Outreach) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE leads
		SET status = $2, assigned_to = $3, follow_up_at = $4,
		    last_activity_at = $5, updated_at = now()
		WHERE id = $1
	`, id, string(o.Status), o.AssignedTo, o.FollowUpAt, o.LastActivityAt)
	return err
}

func (r *LeadRepository) UpdateDetails(ctx context.Context, lead *entity.Lead) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE leads
		SET name = $2, email = $3, message = $4,
		    interests = $5, tags = $6,
		    preferred_time_type = $7, preferred_time_at = $8,
		    updated_at = $9
		WHERE id = $1
	`, lead.ID, lead.Name, lead.Email, lead.Message,
		pq.Array(lead.Interests), pq.Array(lead.Tags),
		string(lead.PreferredTimeType), lead.PreferredTimeAt, lead.UpdatedAt)
	return err
}

func (r *LeadRepository) AppendNote(ctx context.Context, note entity.Note) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO lead_notes (id, lead_id, body, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, note.ID, note.LeadID, note.Body, note.AuthorID, note.CreatedAt)
	return err
}

func (r *LeadRepository) Archive(ctx context.Context, id, actorID string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE leads
		SET archived_at = $2, archived_by = $3, updated_at = now()
		WHERE id = $1 AND archived_at IS NULL
	`, id, at, actorID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *LeadRepository) Restore(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE leads
		SET archived_at = NULL, archived_by = NULL, updated_at = now()
		WHERE id = $1 AND archived_at IS NOT NULL
	`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) BulkArchive(ctx context.Context, ids []string, actorID string, at time.Time) (usecase.BulkResult, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE leads
		SET archived_at = $2, archived_by = $3, updated_at = now()
		WHERE id = ANY($1) AND archived_at IS NULL
	`, pq.Array(ids), at, actorID)
	return bulkResult(res, err, len(ids))
}

func (r *LeadRepository) BulkRestore(ctx context.Context, ids []string) (usecase.BulkResult, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE leads
		SET archived_at = NULL, archived_by = NULL, updated_at = now()
		WHERE id = ANY($1) AND archived_at IS NOT NULL
	`, pq.Array(ids))
	return bulkResult(res, err, len(ids))
}

func (r *LeadRepository) BulkAssign(ctx context.Context, ids []string, assigneeID string, at time.Time) (usecase.BulkResult, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE leads
		SET assigned_to = $2, last_activity_at = $3, updated_at = now()
		WHERE id = ANY($1) AND archived_at IS NULL
	`, pq.Array(ids), assigneeID, at)
	return bulkResult(res, err, len(ids))
}

func (r *LeadRepository) BulkDelete(ctx context.Context, ids []string) (usecase.BulkResult, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = ANY($1)`, pq.Array(ids))
	return bulkResult(res, err, len(ids))
}

func bulkResult(res sql.Result, err error, matched int) (usecase.BulkResult, error) {
	if err != nil {
		return usecase.BulkResult{}, err
	}
	modified, err := res.RowsAffected()
	if err != nil {
		return usecase.BulkResult{}, err
	}
	return usecase.BulkResult{Matched: int64(matched), Modified: modified}, nil
}

func (r *LeadRepository) notesForLead(ctx context.Context, leadID string) ([]entity.Note, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, lead_id, body, author_id, created_at
		FROM lead_notes
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []entity.Note
	for rows.Next() {
		var n entity.Note
		var author sql.NullString
		if err := rows.Scan(&n.ID, &n.LeadID, &n.Body, &author, &n.CreatedAt); err != nil {
			return nil, err
		}
		if author.Valid {
			n.AuthorID = &author.String
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var l entity.Lead
	var source, prefType, status string
	var assignedTo, archivedBy sql.NullString
	var preferredAt, followUpAt, archivedAt sql.NullTime
	var interests, tags pq.StringArray

	err := row.Scan(
		&l.ID, &l.Name, &l.Phone, &l.Email, &l.Message,
		&source, &l.RawSource, &interests, &tags, &l.Consent,
		&l.Attribution.UTMSource, &l.Attribution.UTMMedium, &l.Attribution.UTMCampaign,
		&l.Attribution.UTMTerm, &l.Attribution.UTMContent, &l.Attribution.PageURL, &l.Attribution.Referrer,
		&prefType, &preferredAt,
		&status, &assignedTo, &followUpAt, &l.Outreach.LastActivityAt,
		&archivedAt, &archivedBy, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Source = entity.LeadSource(source)
	l.PreferredTimeType = entity.PreferredTimeType(prefType)
	l.Outreach.Status = entity.LeadStatus(status)
	l.Interests = interests
	l.Tags = tags

	if assignedTo.Valid {
		l.Outreach.AssignedTo = &assignedTo.String
	}
	if preferredAt.Valid {
		t := preferredAt.Time
		l.PreferredTimeAt = &t
	}
	if followUpAt.Valid {
		t := followUpAt.Time
		l.Outreach.FollowUpAt = &t
	}
	if archivedAt.Valid {
		t := archivedAt.Time
		l.ArchivedAt = &t
	}
	if archivedBy.Valid {
		l.ArchivedBy = &archivedBy.String
	}
	return &l, nil
}

func scanLeads(rows *sql.Rows) ([]*entity.Lead, error) {
	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}
