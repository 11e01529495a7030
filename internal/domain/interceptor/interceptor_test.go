package interceptor

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/scheme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNavigator struct {
	mock.Mock
}

func (m *mockNavigator) UpdateTab(ctx context.Context, tabID int, url string) error {
	return m.Called(tabID, url).Error(0)
}

func (m *mockNavigator) CreateTab(ctx context.Context, url string) (int, error) {
	args := m.Called(url)
	return args.Int(0), args.Error(1)
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *countingRecorder) RecordRedirect(trigger, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, trigger+":"+outcome)
}

const base = "http://localhost:8000/launcher"

func TestHandleRedirectsMatchingURL(t *testing.T) {
	for _, kind := range []EventKind{EventTabUpdated, EventBeforeNavigate} {
		t.Run(string(kind), func(t *testing.T) {
			nav := &mockNavigator{}
			nav.On("UpdateTab", 7, mock.AnythingOfType("string")).Return(nil)
			rec := &countingRecorder{}
			i := New(base, nav, rec, nil)

			d, err := i.Handle(context.Background(), Event{Kind: kind, TabID: 7, URL: "rival://abc?version=v1"})
			require.NoError(t, err)
			assert.True(t, d.Redirected)
			assert.Equal(t, 7, d.TabID)

			u, err := url.Parse(d.LauncherURL)
			require.NoError(t, err)
			assert.Equal(t, "abc", u.Query().Get("functionId"))
			assert.Equal(t, "v1", u.Query().Get("version"))
			assert.Equal(t, "true", u.Query().Get("autoload"))

			nav.AssertCalled(t, "UpdateTab", 7, d.LauncherURL)
			assert.Equal(t, []string{string(kind) + ":redirected"}, rec.outcomes)
			assert.Equal(t, Idle, i.State(7))
		})
	}
}

func TestHandleIgnoresOtherURLs(t *testing.T) {
	nav := &mockNavigator{}
	i := New(base, nav, nil, nil)

	d, err := i.Handle(context.Background(), Event{Kind: EventTabUpdated, TabID: 1, URL: "https://example.com"})
	require.NoError(t, err)
	assert.False(t, d.Redirected)
	nav.AssertNotCalled(t, "UpdateTab", mock.Anything, mock.Anything)
}

func TestHandleMissingFunctionID(t *testing.T) {
	nav := &mockNavigator{}
	rec := &countingRecorder{}
	i := New(base, nav, rec, nil)

	d, err := i.Handle(context.Background(), Event{Kind: EventBeforeNavigate, TabID: 2, URL: "rival://"})
	assert.ErrorIs(t, err, scheme.ErrMissingFunctionID)
	assert.False(t, d.Redirected)
	nav.AssertNotCalled(t, "UpdateTab", mock.Anything, mock.Anything)
	assert.Equal(t, Idle, i.State(2))
	assert.Equal(t, []string{"before_navigate:parse_error"}, rec.outcomes)
}

func TestHandleNavigationFailureReturnsToIdle(t *testing.T) {
	nav := &mockNavigator{}
	nav.On("UpdateTab", 3, mock.Anything).Return(errors.New("tab closed")).Once()
	i := New(base, nav, nil, nil)

	_, err := i.Handle(context.Background(), Event{Kind: EventTabUpdated, TabID: 3, URL: "rival://fn"})
	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, 3, navErr.TabID)
	assert.Equal(t, "update tab 3: tab closed", err.Error())
	assert.Equal(t, Idle, i.State(3))
	nav.AssertNumberOfCalls(t, "UpdateTab", 1)
}

func TestHandleBusyTab(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	nav := &mockNavigator{}
	nav.On("UpdateTab", 4, mock.Anything).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return(nil).Once()
	i := New(base, nav, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := i.Handle(context.Background(), Event{Kind: EventTabUpdated, TabID: 4, URL: "rival://fn"})
		done <- err
	}()

	<-entered
	assert.Equal(t, Redirecting, i.State(4))

	_, err := i.Handle(context.Background(), Event{Kind: EventBeforeNavigate, TabID: 4, URL: "rival://fn"})
	assert.ErrorIs(t, err, ErrTabBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, Idle, i.State(4))
}

func TestHandleUnknownEvent(t *testing.T) {
	i := New(base, &mockNavigator{}, nil, nil)
	_, err := i.Handle(context.Background(), Event{Kind: "closed", URL: "rival://fn"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestOpen(t *testing.T) {
	nav := &mockNavigator{}
	nav.On("CreateTab", mock.Anything).Return(42, nil)
	i := New(base, nav, nil, nil)

	d, err := i.Open(context.Background(), scheme.OpenRequest{FunctionID: "fn", BaseURL: "https://api.example.com"})
	require.NoError(t, err)
	assert.Equal(t, 42, d.TabID)

	u, err := url.Parse(d.LauncherURL)
	require.NoError(t, err)
	assert.Equal(t, "true", u.Query().Get("autoload"))
	assert.Equal(t, "https://api.example.com", u.Query().Get("baseUrl"))
	assert.False(t, u.Query().Has("version"))

	_, err = i.Open(context.Background(), scheme.OpenRequest{})
	assert.ErrorIs(t, err, scheme.ErrMissingFunctionID)
}

func TestReplyNavigator(t *testing.T) {
	n := &ReplyNavigator{}
	require.NoError(t, n.UpdateTab(context.Background(), 1, "x"))

	a, err := n.CreateTab(context.Background(), "x")
	require.NoError(t, err)
	b, _ := n.CreateTab(context.Background(), "x")
	assert.Less(t, a, 0)
	assert.NotEqual(t, a, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, n.UpdateTab(ctx, 1, "x"))
}
