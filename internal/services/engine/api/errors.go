package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/louisbranch/roundtable/internal/platform/errors"
	"github.com/louisbranch/roundtable/internal/services/engine/storage"
)

// errorResponse is the uniform failure body.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperrors.HTTPStatusFor(err), errorResponse{Detail: apperrors.MessageFor(err)})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// campaignError rewrites a bare store miss into the campaign-scoped detail
// message. Not-found errors carrying their own message pass through.
func campaignError(campaignID string, err error) error {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) && domainErr == storage.ErrNotFound {
		return apperrors.WithMetadata(
			apperrors.CodeNotFound,
			fmt.Sprintf("Campaign not found: %s", campaignID),
			map[string]string{"CampaignID": campaignID},
		)
	}
	return err
}
