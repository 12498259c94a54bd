package book

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookshelf/internal/httpx"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type renderCall struct {
	status int
	name   string
	data   any
}

type fakeRenderer struct {
	calls []renderCall
}

func (f *fakeRenderer) Render(w http.ResponseWriter, status int, name string, data any) {
	f.calls = append(f.calls, renderCall{status: status, name: name, data: data})
	w.WriteHeader(status)
}

func (f *fakeRenderer) last(t *testing.T) renderCall {
	t.Helper()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

func requestAs(method, path, userID string) *http.Request {
	r := httptest.NewRequest(method, path, nil)
	if userID != "" {
		r = r.WithContext(httpx.ContextWithUser(r.Context(), userID, "alice", ""))
	}
	return r
}

func TestHTTPHandler_List(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		setupMock  func(m *MockRepository)
		wantStatus int
		wantTmpl   string
		wantBooks  []Book
	}{
		{
			name:   "renders owned books",
			userID: "user-a",
			setupMock: func(m *MockRepository) {
				m.EXPECT().ListByAuthor(gomock.Any(), "user-a").Return([]Book{{ID: 1, Title: "One", AuthorID: "user-a"}}, nil)
			},
			wantStatus: http.StatusOK,
			wantTmpl:   "books_list.html",
			wantBooks:  []Book{{ID: 1, Title: "One", AuthorID: "user-a"}},
		},
		{
			name:   "renders empty list",
			userID: "user-a",
			setupMock: func(m *MockRepository) {
				m.EXPECT().ListByAuthor(gomock.Any(), "user-a").Return([]Book{}, nil)
			},
			wantStatus: http.StatusOK,
			wantTmpl:   "books_list.html",
			wantBooks:  []Book{},
		},
		{
			name:   "store error",
			userID: "user-a",
			setupMock: func(m *MockRepository) {
				m.EXPECT().ListByAuthor(gomock.Any(), "user-a").Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
			wantTmpl:   "error.html",
		},
		{
			name:       "no identity",
			setupMock:  func(m *MockRepository) {},
			wantStatus: http.StatusUnauthorized,
			wantTmpl:   "error.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockRepo := NewMockRepository(ctrl)
			tt.setupMock(mockRepo)
			renderer := &fakeRenderer{}
			handler := NewHTTPHandler(NewService(mockRepo), renderer)

			w := httptest.NewRecorder()
			handler.List(w, requestAs(http.MethodGet, "/books/", tt.userID))

			assert.Equal(t, tt.wantStatus, w.Code)
			call := renderer.last(t)
			assert.Equal(t, tt.wantTmpl, call.name)
			if tt.wantBooks != nil {
				page, ok := call.data.(ListPage)
				require.True(t, ok)
				assert.Equal(t, tt.wantBooks, page.Books)
				assert.Equal(t, "alice", page.Username)
			}
		})
	}
}

func TestHTTPHandler_Detail(t *testing.T) {
	owned := Book{ID: 1, Title: "One", AuthorID: "user-a"}

	tests := []struct {
		name       string
		userID     string
		pathID     string
		setupMock  func(m *MockRepository)
		wantStatus int
		wantTmpl   string
		wantBook   *Book
		wantError  string
	}{
		{
			name:   "owned book",
			userID: "user-a",
			pathID: "1",
			setupMock: func(m *MockRepository) {
				m.EXPECT().GetByIDAndAuthor(gomock.Any(), int64(1), "user-a").Return(owned, nil)
			},
			wantStatus: http.StatusOK,
			wantTmpl:   "book_detail.html",
			wantBook:   &owned,
		},
		{
			name:   "not owned renders denial with 200",
			userID: "user-b",
			pathID: "1",
			setupMock: func(m *MockRepository) {
				m.EXPECT().GetByIDAndAuthor(gomock.Any(), int64(1), "user-b").Return(Book{}, ErrNotFound)
			},
			wantStatus: http.StatusOK,
			wantTmpl:   "book_detail.html",
			wantError:  DenialMessage,
		},
		{
			name:   "missing renders the same denial",
			userID: "user-a",
			pathID: "999",
			setupMock: func(m *MockRepository) {
				m.EXPECT().GetByIDAndAuthor(gomock.Any(), int64(999), "user-a").Return(Book{}, ErrNotFound)
			},
			wantStatus: http.StatusOK,
			wantTmpl:   "book_detail.html",
			wantError:  DenialMessage,
		},
		{
			name:       "non-numeric id",
			userID:     "user-a",
			pathID:     "abc",
			setupMock:  func(m *MockRepository) {},
			wantStatus: http.StatusNotFound,
			wantTmpl:   "error.html",
		},
		{
			name:       "explicit plus sign",
			userID:     "user-a",
			pathID:     "+1",
			setupMock:  func(m *MockRepository) {},
			wantStatus: http.StatusNotFound,
			wantTmpl:   "error.html",
		},
		{
			name:       "overflowing id",
			userID:     "user-a",
			pathID:     "99999999999999999999",
			setupMock:  func(m *MockRepository) {},
			wantStatus: http.StatusNotFound,
			wantTmpl:   "error.html",
		},
		{
			name:       "zero id",
			userID:     "user-a",
			pathID:     "0",
			setupMock:  func(m *MockRepository) {},
			wantStatus: http.StatusNotFound,
			wantTmpl:   "error.html",
		},
		{
			name:   "store error",
			userID: "user-a",
			pathID: "1",
			setupMock: func(m *MockRepository) {
				m.EXPECT().GetByIDAndAuthor(gomock.Any(), int64(1), "user-a").Return(Book{}, context.DeadlineExceeded)
			},
			wantStatus: http.StatusInternalServerError,
			wantTmpl:   "error.html",
		},
		{
			name:       "no identity",
			pathID:     "1",
			setupMock:  func(m *MockRepository) {},
			wantStatus: http.StatusUnauthorized,
			wantTmpl:   "error.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockRepo := NewMockRepository(ctrl)
			tt.setupMock(mockRepo)
			renderer := &fakeRenderer{}
			handler := NewHTTPHandler(NewService(mockRepo), renderer)

			w := httptest.NewRecorder()
			r := requestAs(http.MethodGet, "/books/"+tt.pathID+"/", tt.userID)
			r.SetPathValue("id", tt.pathID)

			handler.Detail(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			call := renderer.last(t)
			assert.Equal(t, tt.wantTmpl, call.name)
			if tt.wantTmpl != "book_detail.html" {
				return
			}
			page, ok := call.data.(DetailPage)
			require.True(t, ok)
			assert.Equal(t, tt.wantBook, page.Book)
			assert.Equal(t, tt.wantError, page.Error)
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw    string
		want   int64
		wantOK bool
	}{
		{raw: "1", want: 1, wantOK: true},
		{raw: "007", want: 7, wantOK: true},
		{raw: "+1"},
		{raw: "-1"},
		{raw: "0"},
		{raw: ""},
		{raw: " 1"},
		{raw: "1e3"},
		{raw: "9223372036854775808"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseID(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
