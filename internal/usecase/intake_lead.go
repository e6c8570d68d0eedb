package usecase

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/entity"
	"github.com/niveshpath/advisory-backend/internal/infra/queue"
)

const DefaultDedupeWindowMinutes = 10

// utmSourceMap maps attribution utm_source values onto lead channels when
// the submission carries no recognized explicit source.
var utmSourceMap = map[string]entity.LeadSource{
	"google":    entity.SourceCampaign,
	"facebook":  entity.SourceCampaign,
	"instagram": entity.SourceCampaign,
	"linkedin":  entity.SourceCampaign,
	"whatsapp":  entity.SourceWhatsApp,
	"referral":  entity.SourceReferral,
}

// ownDomains are referrer hosts that identify organic website traffic.
var ownDomains = []string{"niveshpath.in", "niveshpath.com"}

type IntakeLeadUseCase struct {
	Leads    LeadRepository
	Activity ActivityRecorder
	Queue    QueueProducerInterface
	Logger   *zap.Logger
}

func NewIntakeLeadUseCase(leads LeadRepository, activity ActivityRecorder, producer QueueProducerInterface, logger *zap.Logger) *IntakeLeadUseCase {
	return &IntakeLeadUseCase{
		Leads:    leads,
		Activity: activity,
		Queue:    producer,
		Logger:   logger,
	}
}

// Execute runs the dedup gate and, for fresh submissions, persists a new
// lead. A submission from a phone already seen within the window returns the
// existing lead unchanged with Deduped=true; nothing is written for it.
//
// The lookup-then-insert is not atomic: two concurrent submissions with the
// same phone can both pass the gate and both insert. That race is an
// accepted property of this design, not masked here.
func (uc *IntakeLeadUseCase) Execute(ctx context.Context, input IntakeLeadInput) (*IntakeLeadOutput, error) {
	if errs := ValidateIntakeInput(input); len(errs) > 0 {
		return nil, NewValidationError(errs)
	}

	phone := entity.NormalizePhone(input.Phone)

	if input.WindowMinutes > 0 {
		since := time.Now().Add(-time.Duration(input.WindowMinutes) * time.Minute)
		existing, err := uc.Leads.FindRecentByPhone(ctx, phone, since)
		if err != nil {
			return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "dedupe lookup failed: " + err.Error()}
		}
		if existing != nil {
			return &IntakeLeadOutput{
				LeadID:  existing.ID,
				Deduped: true,
				Status:  existing.Outreach.Status,
				Source:  existing.Source,
			}, nil
		}
	}

	lead := entity.NewLead(strings.TrimSpace(input.Name), phone)
	lead.Email = strings.TrimSpace(input.Email)
	lead.Message = strings.TrimSpace(input.Message)
	lead.Interests = input.Interests
	lead.Tags = input.Tags
	lead.Attribution = input.Context
	if input.Consent != nil {
		lead.Consent = *input.Consent
	}
	if input.PreferredTimeType != "" {
		lead.PreferredTimeType = entity.PreferredTimeType(input.PreferredTimeType)
	}
	lead.PreferredTimeAt = input.PreferredTimeAt

	lead.Source, lead.RawSource = deriveSource(input.Source, input.Context)

	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to persist lead: " + err.Error()}
	}

	uc.Activity.Record(ctx, RecordActivityInput{
		LeadID:    lead.ID,
		Action:    entity.ActionLeadCreated,
		Meta:      map[string]string{"source": string(lead.Source)},
		RequestID: input.RequestID,
	})

	// notification fan-out must never delay the intake response
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := uc.Queue.PublishLeadEvent(pubCtx, queue.LeadEventPayload{
			Event:      queue.EventLeadCreated,
			LeadID:     lead.ID,
			LeadName:   lead.Name,
			Phone:      lead.Phone,
			Status:     string(lead.Outreach.Status),
			OccurredAt: lead.CreatedAt,
		})
		if err != nil {
			uc.Logger.Warn("lead created event publish failed",
				zap.String("lead_id", lead.ID), zap.Error(err))
		}
	}()

	return &IntakeLeadOutput{
		LeadID:  lead.ID,
		Deduped: false,
		Status:  lead.Outreach.Status,
		Source:  lead.Source,
	}, nil
}

// deriveSource resolves the channel a lead came from: the explicit value if
// it belongs to the enum, else the attribution utm_source mapping, else the
// referrer host, else Other. Unrecognized raw values are preserved for later
// inspection instead of dropped.
func deriveSource(explicit string, attribution entity.Attribution) (entity.LeadSource, string) {
	if explicit != "" && entity.ValidSource(entity.LeadSource(explicit)) {
		return entity.LeadSource(explicit), ""
	}

	if mapped, ok := utmSourceMap[strings.ToLower(attribution.UTMSource)]; ok {
		return mapped, ""
	}

	if host := referrerHost(attribution.Referrer); host != "" {
		for _, own := range ownDomains {
			if host == own || strings.HasSuffix(host, "."+own) {
				return entity.SourceWebsite, ""
			}
		}
	}

	raw := explicit
	if raw == "" {
		raw = attribution.UTMSource
	}
	return entity.SourceOther, raw
}

func referrerHost(referrer string) string {
	if referrer == "" {
		return ""
	}
	u, err := url.Parse(referrer)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
