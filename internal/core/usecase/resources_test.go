package usecase

import (
	"context"
	"errors"
	"property-explorer/internal/contracts"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/errnorm"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookmarkAPI struct {
	bookmarks []domain.Bookmark
	listErr   error
	added     []int64
	removed   []int64
}

func (f *fakeBookmarkAPI) ListBookmarks(context.Context) ([]domain.Bookmark, error) {
	return f.bookmarks, f.listErr
}

func (f *fakeBookmarkAPI) AddBookmark(_ context.Context, id int64) (domain.Bookmark, error) {
	f.added = append(f.added, id)
	return domain.Bookmark{ID: 100, PropertyID: id}, nil
}

func (f *fakeBookmarkAPI) RemoveBookmark(_ context.Context, id int64) error {
	f.removed = append(f.removed, id)
	return nil
}

func TestBookmarks_Toggle(t *testing.T) {
	api := &fakeBookmarkAPI{bookmarks: []domain.Bookmark{
		{ID: 1, PropertyID: 7},
		{ID: 2, Property: &domain.Property{ID: 9}},
	}}
	uc := NewBookmarksUseCase(api, errnorm.New("en"))
	ctx := context.Background()

	res, err := uc.Toggle(ctx, 9)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Equal(t, "Removed from bookmarks", res.Message)
	assert.Equal(t, []int64{9}, api.removed)

	res, err = uc.Toggle(ctx, 3)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, []int64{3}, api.added)
}

func TestBookmarks_CheckFailureMeansNotBookmarked(t *testing.T) {
	api := &fakeBookmarkAPI{listErr: errors.New("boom"), bookmarks: []domain.Bookmark{{PropertyID: 7}}}
	uc := NewBookmarksUseCase(api, nil)

	assert.False(t, uc.IsBookmarked(context.Background(), 7))
}

type fakeLikeAPI struct {
	likes   []domain.Like
	listErr error
	removed []int64
	added   []int64
}

func (f *fakeLikeAPI) ListLikes(context.Context) ([]domain.Like, error) { return f.likes, f.listErr }

func (f *fakeLikeAPI) AddLike(_ context.Context, id int64) (domain.Like, error) {
	f.added = append(f.added, id)
	return domain.Like{ID: 55, Property: &id}, nil
}

func (f *fakeLikeAPI) RemoveLike(_ context.Context, likeID int64) error {
	f.removed = append(f.removed, likeID)
	return nil
}

func TestLikes_ToggleRemovesByLikeID(t *testing.T) {
	propertyID, blogID := int64(7), int64(8)
	api := &fakeLikeAPI{likes: []domain.Like{{ID: 31, Property: &propertyID}, {ID: 32, Blog: &blogID}}}
	uc := NewLikesUseCase(api)
	ctx := context.Background()

	status := uc.Check(ctx, 8)
	require.True(t, status.Liked)
	assert.Equal(t, int64(32), *status.LikeID)

	res, err := uc.Toggle(ctx, 7)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Equal(t, []int64{31}, api.removed)

	res, err = uc.Toggle(ctx, 99)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, int64(55), *res.LikeID)
	assert.Equal(t, []int64{99}, api.added)

	api.listErr = errors.New("offline")
	assert.Equal(t, domain.LikeStatus{}, uc.Check(ctx, 7))
}

type fakeAuthAPI struct {
	tokens    domain.AuthTokens
	err       error
	logoutErr error
	refreshed string
	logins    int
}

func (f *fakeAuthAPI) Login(context.Context, domain.LoginCredentials) (domain.AuthTokens, error) {
	f.logins++
	return f.tokens, f.err
}

func (f *fakeAuthAPI) Register(context.Context, domain.RegisterData) (domain.AuthTokens, error) {
	return f.tokens, f.err
}

func (f *fakeAuthAPI) Refresh(_ context.Context, refresh string) (domain.AuthTokens, error) {
	f.refreshed = refresh
	return f.tokens, f.err
}

func (f *fakeAuthAPI) Logout(context.Context) error { return f.logoutErr }

func newChecker(t *testing.T) *FormChecker {
	t.Helper()
	v, err := contracts.NewFormValidator()
	require.NoError(t, err)
	return NewFormChecker(v, errnorm.New("en"))
}

func TestAuth_LoginStoresTokensPerSession(t *testing.T) {
	kv := newFakeKV()
	tokens := NewSessionTokenStore(kv)
	api := &fakeAuthAPI{tokens: domain.AuthTokens{Token: "access-1", Refresh: "refresh-1"}}
	uc := NewAuthUseCase(api, tokens, newChecker(t), errnorm.New("en"))
	ctx := sessionCtx("s1")

	_, err := uc.Login(ctx, domain.LoginCredentials{Email: " user@example.com ", Password: "secret"})
	require.NoError(t, err)

	access, err := tokens.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", access)
	assert.Equal(t, []byte("refresh-1"), kv.data["session:s1:refresh_token"])

	other, err := tokens.AccessToken(sessionCtx("s2"))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAuth_LoginValidationSkipsBackend(t *testing.T) {
	api := &fakeAuthAPI{}
	uc := NewAuthUseCase(api, NewSessionTokenStore(newFakeKV()), newChecker(t), errnorm.New("en"))

	_, err := uc.Login(sessionCtx("s1"), domain.LoginCredentials{Email: "nope", Password: " "})
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, domain.KindValidation, apiErr.Kind)
	assert.Equal(t, map[string]string{"email": "email is invalid", "password": "password is required"}, apiErr.Details)
	assert.Zero(t, api.logins)
}

func TestAuth_RefreshAndLogout(t *testing.T) {
	kv := newFakeKV()
	tokens := NewSessionTokenStore(kv)
	api := &fakeAuthAPI{tokens: domain.AuthTokens{Token: "access-2"}}
	uc := NewAuthUseCase(api, tokens, nil, errnorm.New("en"))
	ctx := sessionCtx("s1")

	_, err := uc.Refresh(ctx)
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)

	require.NoError(t, tokens.SaveTokens(ctx, "access-1", "refresh-1"))
	_, err = uc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", api.refreshed)
	access, _ := tokens.AccessToken(ctx)
	assert.Equal(t, "access-2", access)
	refresh, _ := tokens.RefreshToken(ctx)
	assert.Equal(t, "refresh-1", refresh, "refresh token is kept when the backend does not rotate it")

	api.logoutErr = errors.New("backend down")
	require.Error(t, uc.Logout(ctx))
	assert.Zero(t, kv.len(), "tokens are cleared even when logout fails")
}

type fakeContactAPI struct {
	calls int
	resp  domain.ContactResponse
}

func (f *fakeContactAPI) SubmitContact(context.Context, domain.ContactForm) (domain.ContactResponse, error) {
	f.calls++
	return f.resp, nil
}

type recordingSuccess struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingSuccess) Success(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func TestSubmitContact(t *testing.T) {
	api := &fakeContactAPI{resp: domain.ContactResponse{Success: true}}
	notes := &recordingSuccess{}
	uc := NewSubmitContactUseCase(api, newChecker(t), errnorm.New("fa"), notes)
	ctx := sessionCtx("s1")

	_, err := uc.Execute(ctx, domain.ContactForm{Name: " ", Email: "a@b", Subject: "Hi", Message: "Hello"})
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, domain.KindValidation, apiErr.Kind)
	assert.Zero(t, api.calls, "invalid form never reaches the backend")
	assert.Empty(t, notes.messages)

	resp, err := uc.Execute(ctx, domain.ContactForm{Name: "Ali", Email: "ali@mail.ir", Subject: "Hi", Message: "Hello"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "پیام شما با موفقیت ارسال شد", resp.Message)
	assert.Equal(t, []string{"پیام شما با موفقیت ارسال شد"}, notes.messages)
	assert.Equal(t, 1, api.calls)
}

type slowPropertyAPI struct {
	fakePropertyAPI
	calls   atomic.Int32
	release chan struct{}
}

func (s *slowPropertyAPI) GetProperty(_ context.Context, id int64) (domain.Property, error) {
	s.calls.Add(1)
	<-s.release
	return domain.Property{ID: id, Title: "Villa"}, nil
}

func TestProperties_ConcurrentDetailsCollapse(t *testing.T) {
	api := &slowPropertyAPI{release: make(chan struct{})}
	uc := NewPropertiesUseCase(api)

	var wg sync.WaitGroup
	results := make([]domain.Property, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := uc.Get(context.Background(), 42)
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}

	eventually(t, func() bool { return api.calls.Load() == 1 }, "first request reaches the backend")
	time.Sleep(50 * time.Millisecond)
	close(api.release)
	wg.Wait()

	assert.Equal(t, int32(1), api.calls.Load())
	for _, p := range results {
		assert.Equal(t, "Villa", p.Title)
	}
}

func TestProperties_CallerCancellationDoesNotAbortSharedLoad(t *testing.T) {
	api := &slowPropertyAPI{release: make(chan struct{})}
	uc := NewPropertiesUseCase(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := uc.Get(ctx, 1)
		errCh <- err
	}()
	eventually(t, func() bool { return api.calls.Load() == 1 }, "request started")
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(api.release)
	p, err := uc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
}
