package valueobject

import (
	"strings"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
)

// DocumentType тип подтверждающего документа, загружаемого исполнителем.
type DocumentType string

const (
	DocumentEvictionNotice       DocumentType = "eviction_notice"
	DocumentPhotoOfPostedNotice  DocumentType = "photo_of_posted_notice"
	DocumentReceipt              DocumentType = "receipt"
	DocumentCertificateOfMailing DocumentType = "certificate_of_mailing"
)

// RequiredDocuments все четыре документа нужны для завершения задания.
var RequiredDocuments = []DocumentType{
	DocumentEvictionNotice,
	DocumentPhotoOfPostedNotice,
	DocumentReceipt,
	DocumentCertificateOfMailing,
}

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentEvictionNotice, DocumentPhotoOfPostedNotice, DocumentReceipt, DocumentCertificateOfMailing:
		return true
	}
	return false
}

func ParseDocumentType(docType string) (DocumentType, error) {
	t := DocumentType(strings.ToLower(strings.TrimSpace(docType)))
	if !t.IsValid() {
		return "", apperror.Newf(apperror.ErrCodeValidation, "invalid document type %q", docType)
	}
	return t, nil
}

// MissingDocuments возвращает обязательные типы, которых нет среди загруженных.
func MissingDocuments(uploaded []DocumentType) []DocumentType {
	have := make(map[DocumentType]struct{}, len(uploaded))
	for _, t := range uploaded {
		have[t] = struct{}{}
	}

	missing := make([]DocumentType, 0, len(RequiredDocuments))
	for _, t := range RequiredDocuments {
		if _, ok := have[t]; !ok {
			missing = append(missing, t)
		}
	}
	return missing
}
