package service

import "github.com/google/uuid"

// OwnershipGuard decides whether a subject may mutate a resource. The model
// is intentionally a single predicate: only the recorded owner may update or
// delete, and reads are never gated.
type OwnershipGuard struct{}

func (OwnershipGuard) CanModify(subjectID, ownerID uuid.UUID) bool {
	return subjectID == ownerID
}
