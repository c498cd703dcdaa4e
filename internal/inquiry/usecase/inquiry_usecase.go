package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoUseCase "github.com/healo/piiguard/internal/crypto/usecase"
	"github.com/healo/piiguard/internal/database"
	apperrors "github.com/healo/piiguard/internal/errors"
	inquiryDomain "github.com/healo/piiguard/internal/inquiry/domain"
	piiDomain "github.com/healo/piiguard/internal/pii/domain"
)

// MaxExportSize caps the number of inquiries decrypted by one export.
const MaxExportSize = 1000

// DocumentMasker masks the protected fields of a document.
type DocumentMasker interface {
	MaskDocument(doc map[string]any, registry *piiDomain.Registry) map[string]any
}

type inquiryUseCase struct {
	txManager database.TxManager
	repo      InquiryRepository
	cipher    cryptoUseCase.FieldCipher
	masker    DocumentMasker
	registry  *piiDomain.Registry
	now       func() time.Time
}

// NewInquiryUseCase creates a new InquiryUseCase over the inquiry field registry.
func NewInquiryUseCase(
	txManager database.TxManager,
	repo InquiryRepository,
	cipher cryptoUseCase.FieldCipher,
	masker DocumentMasker,
) InquiryUseCase {
	return &inquiryUseCase{
		txManager: txManager,
		repo:      repo,
		cipher:    cipher,
		masker:    masker,
		registry:  piiDomain.InquiryRegistry(),
		now:       time.Now,
	}
}

// Submit implements InquiryUseCase. Encryption and the insert share one transaction, so
// a database-side encryptor and the row write use the same connection.
func (i *inquiryUseCase) Submit(
	ctx context.Context,
	input *inquiryDomain.SubmitInquiryInput,
) (*inquiryDomain.Inquiry, error) {
	document := input.Document()

	inquiry := &inquiryDomain.Inquiry{
		ID:        uuid.Must(uuid.NewV7()),
		Status:    inquiryDomain.StatusNew,
		Summary:   i.masker.MaskDocument(document, i.registry),
		CreatedAt: i.now().UTC().Truncate(time.Microsecond),
	}

	err := i.txManager.WithTx(ctx, func(ctx context.Context) error {
		encrypted, err := i.cipher.EncryptFields(ctx, document, i.registry.Names())
		if err != nil {
			return apperrors.Wrap(err, "failed to encrypt inquiry")
		}
		inquiry.Document = encrypted

		return i.repo.Create(ctx, inquiry)
	})
	if err != nil {
		return nil, err
	}

	return &inquiryDomain.Inquiry{
		ID:        inquiry.ID,
		Status:    inquiry.Status,
		Summary:   inquiry.Summary,
		CreatedAt: inquiry.CreatedAt,
	}, nil
}

// List implements InquiryUseCase.
func (i *inquiryUseCase) List(ctx context.Context, offset, limit int) ([]*inquiryDomain.Inquiry, error) {
	inquiries, err := i.repo.List(ctx, offset, limit, nil, nil)
	if err != nil {
		return nil, err
	}
	for _, inquiry := range inquiries {
		inquiry.Document = nil
	}
	return inquiries, nil
}

// Get implements InquiryUseCase.
func (i *inquiryUseCase) Get(ctx context.Context, id uuid.UUID) (*inquiryDomain.Inquiry, error) {
	inquiry, err := i.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := i.decrypt(ctx, inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}

// Export implements InquiryUseCase. One undecryptable inquiry fails the whole export.
func (i *inquiryUseCase) Export(
	ctx context.Context,
	createdAtFrom, createdAtTo *time.Time,
) ([]*inquiryDomain.Inquiry, error) {
	inquiries, err := i.repo.List(ctx, 0, MaxExportSize, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, err
	}
	for _, inquiry := range inquiries {
		if err := i.decrypt(ctx, inquiry); err != nil {
			return nil, err
		}
	}
	return inquiries, nil
}

func (i *inquiryUseCase) decrypt(ctx context.Context, inquiry *inquiryDomain.Inquiry) error {
	document, err := i.cipher.DecryptFields(ctx, inquiry.Document, i.registry.Names())
	if err != nil {
		return apperrors.Wrapf(err, "failed to decrypt inquiry %s", inquiry.ID)
	}
	inquiry.Document = document
	return nil
}
