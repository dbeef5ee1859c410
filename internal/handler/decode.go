package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/paiban/roster/pkg/rosterrors"
)

// decodeRosterRequestRaw reads the body once into a generic map so it
// can both be re-marshaled into model.RosterRequest and preserved
// verbatim for the output's meta.inputHash (§4.6).
func decodeRosterRequestRaw(r *http.Request) (map[string]interface{}, *rosterrors.AppError) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, rosterrors.Wrap(err, rosterrors.CodeInputError, "failed to read request body")
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, rosterrors.Wrap(err, rosterrors.CodeInputError, "malformed JSON request body")
	}
	return raw, nil
}

// remarshal round-trips src (typically the raw decoded JSON map) into
// dst via JSON, since model.RosterRequest exposes no JSON tags and
// encoding/json matches map keys to exported field names directly.
func remarshal(src interface{}, dst interface{}) error {
	encoded, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, dst)
}
