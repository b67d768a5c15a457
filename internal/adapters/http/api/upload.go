package api

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/okian/tackline/internal/adapters/ingest"
	"github.com/okian/tackline/internal/domain/model"
	"github.com/okian/tackline/pkg/metrics"
)

// IdempotencyHeader carries a client-chosen upload key.
const IdempotencyHeader = "Idempotency-Key"

// upload is a decoded request body.
type upload struct {
	body    []byte
	format  ingest.Format
	samples []model.Sample
}

// key returns the idempotency key: the header when present, else the
// SHA-256 of the body.
func (u upload) key(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get(IdempotencyHeader)); k != "" {
		return k
	}
	sum := sha256.Sum256(u.body)
	return hex.EncodeToString(sum[:])
}

// readUpload reads at most maxBytes of the body and decodes it as a log.
// The format comes from ?format=, then Content-Type, then the first byte.
func readUpload(w http.ResponseWriter, r *http.Request, op string, maxBytes int64) (upload, int, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return upload{}, http.StatusRequestEntityTooLarge, WrapKind(op, ErrTooLarge, err)
		}
		return upload{}, http.StatusBadRequest, WrapKind(op, ErrBadRequest, err)
	}

	f, err := detectFormat(r, body)
	if err != nil {
		metrics.RecordIngestError("unknown")
		return upload{}, http.StatusBadRequest, WrapKind(op, ErrBadRequest, err)
	}

	samples, err := ingest.Read(bytes.NewReader(body), f)
	if err != nil {
		metrics.RecordIngestError(string(f))
		return upload{}, http.StatusBadRequest, WrapKind(op, ErrBadRequest, err)
	}
	return upload{body: body, format: f, samples: samples}, http.StatusOK, nil
}

func detectFormat(r *http.Request, body []byte) (ingest.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return ingest.ParseFormat(f)
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !genericContentType(ct) {
		return ingest.ParseFormat(ct)
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		return ingest.JSON, nil
	}
	return ingest.CSV, nil
}

func genericContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.HasPrefix(ct, "text/plain") ||
		strings.HasPrefix(ct, "application/octet-stream") ||
		strings.HasPrefix(ct, "application/x-www-form-urlencoded")
}
