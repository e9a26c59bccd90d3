package session

import (
	"github.com/frahmantamala/budget-story/internal/ledger"
)

type CommitResponse struct {
	Session State         `json:"session"`
	Ledger  ledger.Ledger `json:"ledger"`
	Warning string        `json:"warning,omitempty"`
}
