package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edumunicipal/school-backend/internal/domain"
)

func newProtocolRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := New(newTestApp(t, nil))
	r := gin.New()
	r.POST("/protocols", h.OpenProtocol)
	r.GET("/protocols", h.ListProtocols)
	r.GET("/protocols/:id", h.GetProtocol)
	r.PUT("/protocols/:id/status", h.UpdateProtocolStatus)
	return r
}

func TestOpenProtocol_AssignsSequentialNumbers(t *testing.T) {
	r := newProtocolRouter(t)
	year := time.Now().UTC().Year()

	var first, second domain.Protocol
	w := doJSON(t, r, http.MethodPost, "/protocols",
		`{"schoolId":"esc-01","subject":"Solicitação de histórico"}`, &first)
	if w.Code != http.StatusCreated {
		t.Fatalf("open: %d %s", w.Code, w.Body.String())
	}
	if want := fmt.Sprintf("ESC-%d-0001", year); first.Number != want {
		t.Fatalf("first number = %q, want %q", first.Number, want)
	}
	if first.Status != "open" {
		t.Fatalf("status = %q", first.Status)
	}

	doJSON(t, r, http.MethodPost, "/protocols",
		`{"schoolId":"esc-01","subject":"Segunda via de boletim"}`, &second)
	if want := fmt.Sprintf("ESC-%d-0002", year); second.Number != want {
		t.Fatalf("second number = %q, want %q", second.Number, want)
	}
}

func TestOpenProtocol_BlankSubjectRejected(t *testing.T) {
	r := newProtocolRouter(t)

	// whitespace-only passes binding but the service rejects it
	var er ErrorResponse
	w := doJSON(t, r, http.MethodPost, "/protocols",
		`{"schoolId":"esc-01","subject":"   "}`, &er)
	if w.Code != http.StatusBadRequest || er.Code != ErrCodeBadRequest {
		t.Fatalf("blank subject: %d %+v", w.Code, er)
	}
}

func TestProtocolStatus_AdvanceAndValidate(t *testing.T) {
	r := newProtocolRouter(t)

	var p domain.Protocol
	doJSON(t, r, http.MethodPost, "/protocols",
		`{"schoolId":"esc-01","subject":"Matrícula fora do prazo"}`, &p)

	var moved domain.Protocol
	w := doJSON(t, r, http.MethodPut, "/protocols/"+p.ID+"/status",
		`{"status":"in_progress"}`, &moved)
	if w.Code != http.StatusOK || moved.Status != "in_progress" {
		t.Fatalf("advance: %d %+v", w.Code, moved)
	}

	w = doJSON(t, r, http.MethodPut, "/protocols/"+p.ID+"/status", `{"status":"archived"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status accepted: %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/protocols/nope/status", `{"status":"closed"}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown protocol: %d", w.Code)
	}
}

func TestListProtocols_FilterBySchool(t *testing.T) {
	r := newProtocolRouter(t)

	doJSON(t, r, http.MethodPost, "/protocols", `{"schoolId":"esc-01","subject":"a"}`, nil)
	doJSON(t, r, http.MethodPost, "/protocols", `{"schoolId":"esc-02","subject":"b"}`, nil)

	var resp struct {
		Protocols []domain.Protocol `json:"protocols"`
	}
	w := doJSON(t, r, http.MethodGet, "/protocols?school_id=esc-02", "", &resp)
	if w.Code != http.StatusOK || len(resp.Protocols) != 1 || resp.Protocols[0].SchoolID != "esc-02" {
		t.Fatalf("filter: %d %+v", w.Code, resp.Protocols)
	}
}
