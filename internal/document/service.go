// Package document orchestrates PDF generation per document type: fetch the
// record, validate its required fields, then either fill a caller-supplied
// template or build the document from scratch. Template trouble of any kind
// falls back to the scratch path; the caller only ever sees a failure when
// that path fails too.
package document

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/locadoc/locadoc/internal/pdf"
	"github.com/locadoc/locadoc/internal/pdf/extract"
	"github.com/locadoc/locadoc/internal/pdf/fill"
	"github.com/locadoc/locadoc/internal/pdf/writer"
	"github.com/locadoc/locadoc/internal/pdf/xref"
	"github.com/locadoc/locadoc/internal/render"
	"github.com/locadoc/locadoc/internal/store"
)

// Records is the record-store dependency.
type Records interface {
	GetLease(ctx context.Context, id int64) (*store.LeaseRecord, error)
	GetInventory(ctx context.Context, id int64) (*store.InventoryRecord, error)
	GetRent(ctx context.Context, id int64) (*store.RentRecord, error)
	InsertDocument(ctx context.Context, d *store.Document) error
}

// Blobs is the blob-store dependency.
type Blobs interface {
	Download(path string) ([]byte, error)
	Upload(path string, data []byte) error
	ResolveTemplate(ref string) ([]byte, error)
	VerifySignedURL(path, exp, sig string) (string, error)
}

// Mailer sends generated documents. Implementations may be disabled.
type Mailer interface {
	Enabled() bool
	SendDocument(to, subject, htmlBody, filename string, attachment []byte) error
}

// Filler fills AcroForm templates.
type Filler interface {
	Fill(template []byte, values fill.Values) ([]byte, fill.Stats, error)
}

// Request identifies the record to render and the optional template.
type Request struct {
	RecordID    int64  `json:"record_id"`
	TemplateRef string `json:"template_ref,omitempty"`
	SendEmail   bool   `json:"send_email,omitempty"`
}

// Result carries the generated document and what happened along the way.
type Result struct {
	Bytes        []byte
	Filename     string
	ContentType  string
	UsedTemplate bool
	Stored       bool
	StoragePath  string
	EmailSent    bool
}

// Service generates lease, inventory and receipt documents.
type Service struct {
	records   Records
	blobs     Blobs
	mailer    Mailer
	filler    Filler
	validator *pdf.TemplateValidator
	log       zerolog.Logger
}

// NewService wires the generation service. maxTemplateSize bounds downloaded
// template bytes; zero disables the limit.
func NewService(records Records, blobs Blobs, mailer Mailer, filler Filler, maxTemplateSize int64, log zerolog.Logger) *Service {
	return &Service{
		records:   records,
		blobs:     blobs,
		mailer:    mailer,
		filler:    filler,
		validator: pdf.NewTemplateValidator(maxTemplateSize),
		log:       log,
	}
}

// GenerateLease renders a lease contract.
func (s *Service) GenerateLease(ctx context.Context, req Request) (*Result, error) {
	rec, err := s.records.GetLease(ctx, req.RecordID)
	if err != nil {
		return nil, fmt.Errorf("fetch lease %d: %w", req.RecordID, err)
	}
	if err := validateLease(rec); err != nil {
		return nil, err
	}

	bytes, usedTemplate, err := s.generate(req.TemplateRef, leaseValues(rec), render.Lease(rec), render.LeaseTitle)
	if err != nil {
		return nil, err
	}
	return &Result{
		Bytes:        bytes,
		Filename:     fmt.Sprintf("contrat-bail-%d.pdf", rec.Lease.ID),
		ContentType:  "application/pdf",
		UsedTemplate: usedTemplate,
	}, nil
}

// GenerateInventory renders an "état des lieux".
func (s *Service) GenerateInventory(ctx context.Context, req Request) (*Result, error) {
	rec, err := s.records.GetInventory(ctx, req.RecordID)
	if err != nil {
		return nil, fmt.Errorf("fetch inventory %d: %w", req.RecordID, err)
	}
	if err := validateInventory(rec); err != nil {
		return nil, err
	}

	bytes, usedTemplate, err := s.generate(req.TemplateRef, inventoryValues(rec), render.Inventory(rec), render.InventoryTitle)
	if err != nil {
		return nil, err
	}
	return &Result{
		Bytes:        bytes,
		Filename:     fmt.Sprintf("etat-des-lieux-%d.pdf", rec.Inventory.ID),
		ContentType:  "application/pdf",
		UsedTemplate: usedTemplate,
	}, nil
}

// GenerateReceipt renders a rent receipt, persists it and optionally mails
// it to the tenant. Persistence and mail are best-effort: their failures are
// logged and reflected in the result, never returned as errors.
func (s *Service) GenerateReceipt(ctx context.Context, req Request) (*Result, error) {
	rec, err := s.records.GetRent(ctx, req.RecordID)
	if err != nil {
		return nil, fmt.Errorf("fetch rent %d: %w", req.RecordID, err)
	}
	if err := validateReceipt(rec); err != nil {
		return nil, err
	}

	bytes, usedTemplate, err := s.generate(req.TemplateRef, receiptValues(rec), render.Receipt(rec), render.ReceiptTitle)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Bytes:        bytes,
		Filename:     fmt.Sprintf("quittance-%d-%02d-%d.pdf", rec.Rent.Year, rec.Rent.Month, rec.Rent.ID),
		ContentType:  "application/pdf",
		UsedTemplate: usedTemplate,
	}

	path := "documents/quittances/" + res.Filename
	if err := s.blobs.Upload(path, bytes); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("receipt upload failed")
	} else {
		res.Stored = true
		res.StoragePath = path
		doc := &store.Document{
			OwnerKind: "rent",
			OwnerID:   rec.Rent.ID,
			Kind:      "quittance",
			Name:      res.Filename,
			Path:      path,
			MimeType:  "application/pdf",
			Size:      int64(len(bytes)),
		}
		if err := s.records.InsertDocument(ctx, doc); err != nil {
			s.log.Warn().Err(err).Msg("receipt document row insert failed")
		}
	}

	if req.SendEmail {
		res.EmailSent = s.emailReceipt(rec, res)
	}
	return res, nil
}

func (s *Service) emailReceipt(rec *store.RentRecord, res *Result) bool {
	if s.mailer == nil || !s.mailer.Enabled() {
		s.log.Debug().Msg("mailer disabled, skipping receipt email")
		return false
	}
	if rec.Tenant.Email == "" {
		s.log.Warn().Msg("tenant has no email address, skipping receipt email")
		return false
	}
	period := receiptValues(rec)[fill.KeyPeriode]
	subject := "Quittance de loyer - " + period
	body := fmt.Sprintf("<p>Bonjour %s,</p><p>Veuillez trouver ci-joint votre quittance de loyer pour %s.</p>",
		rec.Tenant.DisplayName(), period)
	if err := s.mailer.SendDocument(rec.Tenant.Email, subject, body, res.Filename, res.Bytes); err != nil {
		s.log.Warn().Err(err).Msg("receipt email failed")
		return false
	}
	return true
}

// generate runs the template path when a reference is given, falling back to
// classic generation on any template failure.
func (s *Service) generate(templateRef string, values fill.Values, markup, fallbackTitle string) ([]byte, bool, error) {
	if templateRef != "" {
		if out, err := s.fillTemplate(templateRef, values); err != nil {
			s.log.Warn().Err(err).Str("template", templateRef).Msg("template path failed, using classic generation")
		} else {
			return out, true, nil
		}
	}
	out, err := s.classic(markup, fallbackTitle)
	if err != nil {
		return nil, false, err
	}
	return out, false, nil
}

func (s *Service) fillTemplate(ref string, values fill.Values) ([]byte, error) {
	template, err := s.resolveTemplate(ref)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(template); err != nil {
		return nil, err
	}
	out, stats, err := s.filler.Fill(template, values)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Int("fields", stats.Fields).
		Int("filled", stats.Filled).
		Bool("overlay", stats.Overlay).
		Str("template", ref).
		Msg("document generated from template")
	return out, nil
}

// resolveTemplate accepts either a storage reference or a previously-issued
// signed download URL.
func (s *Service) resolveTemplate(ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "/files/") {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("parse template url: %w", err)
		}
		path := strings.TrimPrefix(u.Path, "/files/")
		verified, err := s.blobs.VerifySignedURL(path, u.Query().Get("exp"), u.Query().Get("sig"))
		if err != nil {
			return nil, fmt.Errorf("template url: %w", err)
		}
		return s.blobs.Download(verified)
	}
	return s.blobs.ResolveTemplate(ref)
}

// classic renders through the extractor into the raw writer and sanity-parses
// the result before handing it out.
func (s *Service) classic(markup, fallbackTitle string) ([]byte, error) {
	content := extract.Extract(markup, fallbackTitle)
	b, err := writer.Write(writer.Document{
		Title:    content.Title,
		Subtitle: content.Subtitle,
		Sections: content.Sections,
	})
	if err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	if err := xref.Verify(b); err != nil {
		return nil, fmt.Errorf("generated document failed verification: %w", err)
	}
	return b, nil
}

func validateLease(rec *store.LeaseRecord) error {
	c := checklist{kind: "bail"}
	c.requireString("adresse du logement", rec.Property.Address)
	c.requireString("nom du locataire", rec.Tenant.LastName)
	c.requireString("prénom du locataire", rec.Tenant.FirstName)
	c.require("date de début", !rec.Lease.StartDate.IsZero())
	c.require("montant du loyer", rec.Lease.RentAmount > 0)
	c.requireString("type de bail", rec.Lease.Kind)
	return c.err()
}

func validateInventory(rec *store.InventoryRecord) error {
	c := checklist{kind: "état des lieux"}
	c.requireString("adresse du logement", rec.Property.Address)
	c.requireString("nom du locataire", rec.Tenant.LastName)
	c.require("date de l'état des lieux", !rec.Inventory.Date.IsZero())
	c.requireString("type d'état des lieux", rec.Inventory.Kind)
	return c.err()
}

func validateReceipt(rec *store.RentRecord) error {
	c := checklist{kind: "quittance"}
	c.requireString("adresse du logement", rec.Property.Address)
	c.requireString("nom du locataire", rec.Tenant.LastName)
	c.requireString("nom du bailleur", rec.Owner.DisplayName())
	c.require("période", rec.Rent.Month >= 1 && rec.Rent.Month <= 12 && rec.Rent.Year > 0)
	c.require("montant du loyer", rec.Rent.Amount > 0)
	return c.err()
}
