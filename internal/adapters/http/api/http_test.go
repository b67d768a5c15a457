package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/tackline/internal/adapters/http/api"
	"github.com/okian/tackline/internal/adapters/ingest"
	"github.com/okian/tackline/internal/adapters/repository"
	service "github.com/okian/tackline/internal/app"
	"github.com/okian/tackline/internal/domain/model"
	"github.com/okian/tackline/internal/domain/types"
	"github.com/okian/tackline/internal/simlog"
	"github.com/okian/tackline/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}
}

const csvLog = "t,twa,vmg\n" +
	"2024-06-01T12:00:00Z,45,6\n" +
	"2024-06-01T12:00:01Z,45,6.1\n"

type submitted struct {
	key     string
	samples []model.Sample
}

type mockDependencies struct {
	submitErr  error
	duplicate  bool
	submits    []submitted
	sessions   map[string]model.Session
	analyzeErr error
}

func (m *mockDependencies) Submit(_ context.Context, key string, samples []model.Sample) (string, bool, error) {
	if m.submitErr != nil {
		return "", false, m.submitErr
	}
	m.submits = append(m.submits, submitted{key: key, samples: samples})
	return "sess-1", m.duplicate, nil
}

func (m *mockDependencies) Analyze(_ context.Context, samples []model.Sample) (model.Analysis, error) {
	if m.analyzeErr != nil {
		return model.Analysis{}, m.analyzeErr
	}
	return model.Analysis{Samples: len(samples), Maneuvers: []model.Maneuver{}, Legs: []model.Maneuver{}, Tacks: []model.Tack{}}, nil
}

func (m *mockDependencies) Session(_ context.Context, id string) (model.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return model.Session{}, fmt.Errorf("get %s: %w", id, repository.ErrNotFound)
	}
	return s, nil
}

func (m *mockDependencies) Sessions(_ context.Context, limit int) ([]model.Session, error) {
	var out []model.Session
	for _, s := range m.sessions {
		if len(out) == limit {
			break
		}
		out = append(out, s)
	}
	return out, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, opts...).
		Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("Then /healthz serves Prometheus metrics", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "tackline_")
		})

		Convey("Then /stats serves the provider's stats", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/stats", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then a wrong method is rejected", func() {
			w := do(mux, httptest.NewRequest(http.MethodDelete, "/sessions", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestSessionsHandler_Submit(t *testing.T) {
	Convey("Given a sessions endpoint", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps, api.WithMaxUploadBytes(1024))

		Convey("When posting a CSV log with an idempotency key", func() {
			req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(csvLog))
			req.Header.Set("Content-Type", "text/csv")
			req.Header.Set(api.IdempotencyHeader, "race-7")
			w := do(mux, req)

			Convey("Then it is accepted and the key is forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				var resp types.SubmitResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.ID, ShouldEqual, "sess-1")
				So(resp.Status, ShouldEqual, model.StatusPending)
				So(resp.Duplicate, ShouldBeFalse)
				So(len(deps.submits), ShouldEqual, 1)
				So(deps.submits[0].key, ShouldEqual, "race-7")
				So(len(deps.submits[0].samples), ShouldEqual, 2)
			})
		})

		Convey("When posting the same body twice without a key", func() {
			for i := 0; i < 2; i++ {
				do(mux, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(csvLog)))
			}

			Convey("Then both carry the same content-derived key", func() {
				So(len(deps.submits), ShouldEqual, 2)
				So(len(deps.submits[0].key), ShouldEqual, 64)
				So(deps.submits[0].key, ShouldEqual, deps.submits[1].key)
			})
		})

		Convey("When posting a JSON array without a content type", func() {
			body := `[{"t":"2024-06-01T12:00:00Z","twa":45},{"t":1717243201,"twa":46}]`
			w := do(mux, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body)))

			Convey("Then the format is sniffed", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(*deps.submits[0].samples[1].TWA, ShouldEqual, 46)
			})
		})

		Convey("When the service reports a duplicate", func() {
			deps.duplicate = true
			w := do(mux, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(csvLog)))

			Convey("Then 200 is returned with duplicate set", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)
			})
		})

		Convey("When the log is malformed", func() {
			w := do(mux, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader("twa,vmg\n45,6\n")))

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
				So(decodeError(w)["message"], ShouldContainSubstring, "no time column")
			})
		})

		Convey("When the format is unknown", func() {
			req := httptest.NewRequest(http.MethodPost, "/sessions?format=xml", strings.NewReader(csvLog))
			w := do(mux, req)

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the body is over the limit", func() {
			big := csvLog + strings.Repeat("2024-06-01T12:00:02Z,45,6\n", 100)
			w := do(mux, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(big)))

			Convey("Then 413 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(decodeError(w)["code"], ShouldEqual, "too_large")
			})
		})

		Convey("When the queue is full", func() {
			deps.submitErr = service.ErrBackpressure
			w := do(mux, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(csvLog)))

			Convey("Then 429 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decodeError(w)["code"], ShouldEqual, "backpressure")
			})
		})

		Convey("When the service is not running", func() {
			deps.submitErr = service.ErrNotStarted
			w := do(mux, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(csvLog)))

			Convey("Then 503 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestSessionsHandler_Read(t *testing.T) {
	Convey("Given stored sessions in every state", t, func() {
		deps := &mockDependencies{sessions: map[string]model.Session{
			"pending": {ID: "pending", Status: model.StatusPending},
			"failed":  {ID: "failed", Status: model.StatusFailed, Error: "boom"},
			"done": {ID: "done", Status: model.StatusDone, Analysis: &model.Analysis{
				Maneuvers: []model.Maneuver{{Board: model.UpwindPort}},
				Tacks:     []model.Tack{{Board: model.UpwindPort}},
			}},
		}}
		mux := newMux(deps, api.WithMaxListLimit(10))

		Convey("Then a finished session's views are served", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/sessions/done/tacks", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"board":"U-P"`)

			w = do(mux, httptest.NewRequest(http.MethodGet, "/sessions/done/legs", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
		})

		Convey("Then a pending session's views conflict", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/sessions/pending/maneuvers", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(decodeError(w)["code"], ShouldEqual, "pending")
		})

		Convey("Then a failed session reports its error", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/sessions/failed/tacks", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decodeError(w)["message"], ShouldEqual, "boom")
		})

		Convey("Then unknown views and sessions are 404", func() {
			So(do(mux, httptest.NewRequest(http.MethodGet, "/sessions/done/sails", http.NoBody)).Code, ShouldEqual, http.StatusNotFound)
			w := do(mux, httptest.NewRequest(http.MethodGet, "/sessions/nope", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w)["code"], ShouldEqual, "not_found")
		})

		Convey("Then a whole session is served", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/sessions/failed", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"failed"`)
		})

		Convey("Then the list is summarized", func() {
			w := do(mux, httptest.NewRequest(http.MethodGet, "/sessions?limit=5", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
			var list []types.SessionSummary
			So(json.Unmarshal(w.Body.Bytes(), &list), ShouldBeNil)
			So(len(list), ShouldEqual, 3)
			So(w.Body.String(), ShouldNotContainSubstring, "analysis")
		})

		Convey("Then bad limits are rejected", func() {
			for _, q := range []string{"0", "-1", "abc", "11"} {
				w := do(mux, httptest.NewRequest(http.MethodGet, "/sessions?limit="+q, http.NoBody))
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})
	})
}

func TestAnalyzeHandler(t *testing.T) {
	Convey("Given an analyze endpoint", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When posting a log", func() {
			w := do(mux, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(csvLog)))

			Convey("Then the analysis is returned inline", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var a model.Analysis
				So(json.Unmarshal(w.Body.Bytes(), &a), ShouldBeNil)
				So(a.Samples, ShouldEqual, 2)
			})
		})

		Convey("When the analysis fails", func() {
			deps.analyzeErr = context.Canceled
			w := do(mux, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(csvLog)))

			Convey("Then 500 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w)["code"], ShouldEqual, "internal_error")
			})
		})
	})
}

func TestAPI_EndToEnd(t *testing.T) {
	Convey("Given the API in front of a running service", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)

		var body bytes.Buffer
		So(ingest.WriteCSV(&body, simlog.Generate(simlog.Default())), ShouldBeNil)

		Convey("When a synthetic log is uploaded", func() {
			req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(body.Bytes()))
			req.Header.Set("Content-Type", "text/csv; charset=utf-8")
			w := do(mux, req)
			So(w.Code, ShouldEqual, http.StatusAccepted)

			var ack types.SubmitResponse
			So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)

			Convey("Then its tack becomes available", func() {
				var tacks []model.Tack
				deadline := time.Now().Add(5 * time.Second)
				for time.Now().Before(deadline) {
					w = do(mux, httptest.NewRequest(http.MethodGet, "/sessions/"+ack.ID+"/tacks", http.NoBody))
					if w.Code != http.StatusConflict {
						break
					}
					time.Sleep(5 * time.Millisecond)
				}
				So(w.Code, ShouldEqual, http.StatusOK)
				So(json.Unmarshal(w.Body.Bytes(), &tacks), ShouldBeNil)
				So(len(tacks), ShouldEqual, 1)
				So(tacks[0].Board, ShouldEqual, model.UpwindPort)
			})

			Convey("Then uploading it again is a duplicate", func() {
				again := do(mux, httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(body.Bytes())))
				So(again.Code, ShouldEqual, http.StatusOK)
				So(again.Body.String(), ShouldContainSubstring, ack.ID)
			})
		})
	})
}
