package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"coverly-core-importer-layer/internal/domain"
	"coverly-core-importer-layer/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeDriver struct {
	retailer  string
	loginErr  error
	orders    []domain.RawOrderRecord
	fetchErr  error
	loginSeen struct {
		username string
		password string
	}
}

func (d *fakeDriver) Retailer() string { return d.retailer }

func (d *fakeDriver) Login(ctx context.Context, page ports.BrowserPage, username, password string) error {
	d.loginSeen.username = username
	d.loginSeen.password = password
	return d.loginErr
}

func (d *fakeDriver) FetchOrders(ctx context.Context, page ports.BrowserPage) ([]domain.RawOrderRecord, error) {
	return d.orders, d.fetchErr
}

type fakeRegistry struct {
	driver *fakeDriver
	err    error
}

func (r *fakeRegistry) Resolve(retailer string) (ports.RetailerDriver, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.driver, nil
}

type fakeBrowserPage struct {
	closed int
}

func (p *fakeBrowserPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	return nil
}
func (p *fakeBrowserPage) WaitNavigation(ctx context.Context, timeout time.Duration) error {
	return nil
}
func (p *fakeBrowserPage) CurrentURL(ctx context.Context) (string, error) { return "", nil }
func (p *fakeBrowserPage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}
func (p *fakeBrowserPage) Fill(ctx context.Context, selector, value string) error { return nil }
func (p *fakeBrowserPage) Click(ctx context.Context, selector string) error       { return nil }
func (p *fakeBrowserPage) Text(ctx context.Context, selector string) (string, error) {
	return "", nil
}
func (p *fakeBrowserPage) BodyText(ctx context.Context) (string, error) { return "", nil }
func (p *fakeBrowserPage) Elements(ctx context.Context, selector string) ([]ports.Element, error) {
	return nil, nil
}
func (p *fakeBrowserPage) Close() error {
	p.closed++
	return nil
}

type fakeBrowserProvider struct {
	page     *fakeBrowserPage
	err      error
	acquired int
}

func (b *fakeBrowserProvider) Acquire(ctx context.Context) (ports.BrowserPage, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.acquired++
	return b.page, nil
}

type fakeProductRepo struct {
	inserted  []domain.ScrapedProduct
	insertErr error
	existing  map[string]bool
	existsErr error
}

func (r *fakeProductRepo) InsertImported(ctx context.Context, userID string, products []domain.ScrapedProduct) ([]domain.ImportedProductRef, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	r.inserted = append(r.inserted, products...)
	refs := make([]domain.ImportedProductRef, 0, len(products))
	for _, p := range products {
		refs = append(refs, domain.ImportedProductRef{ID: p.ExternalID, Name: p.Name, Retailer: p.Retailer})
	}
	return refs, nil
}

func (r *fakeProductRepo) Exists(ctx context.Context, userID, name, purchaseDate string) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	return r.existing[name], nil
}

type fakeConnectionRepo struct {
	upserts   []*domain.UserConnection
	upsertErr error
}

func (r *fakeConnectionRepo) Upsert(ctx context.Context, conn *domain.UserConnection) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserts = append(r.upserts, conn)
	return nil
}

func (r *fakeConnectionRepo) ListByUser(ctx context.Context, userID string) ([]*domain.UserConnection, error) {
	return r.upserts, nil
}

func (r *fakeConnectionRepo) Delete(ctx context.Context, userID, retailer string) error {
	return nil
}

type fakeLocker struct {
	held       bool
	acquireErr error
	released   int
}

func (l *fakeLocker) AcquireLock(ctx context.Context, userID, retailer string, ttl time.Duration) (bool, error) {
	if l.acquireErr != nil {
		return false, l.acquireErr
	}
	return !l.held, nil
}

func (l *fakeLocker) ReleaseLock(ctx context.Context, userID, retailer string) error {
	l.released++
	return nil
}

type fakeDedup struct {
	seen    map[string]bool
	seenErr error
	marked  []string
}

func (d *fakeDedup) Seen(ctx context.Context, key string) (bool, error) {
	if d.seenErr != nil {
		return false, d.seenErr
	}
	return d.seen[key], nil
}

func (d *fakeDedup) MarkSeen(ctx context.Context, key string, ttl time.Duration) error {
	d.marked = append(d.marked, key)
	return nil
}

type fakeSink struct {
	events []*domain.ImportEvent
}

func (s *fakeSink) Publish(event *domain.ImportEvent) {
	s.events = append(s.events, event)
}

// --- harness ---

type importFixture struct {
	service  *ImportService
	driver   *fakeDriver
	browsers *fakeBrowserProvider
	products *fakeProductRepo
	conns    *fakeConnectionRepo
	locker   *fakeLocker
	dedup    *fakeDedup
	sink     *fakeSink
}

func newImportFixture() *importFixture {
	f := &importFixture{
		driver:   &fakeDriver{retailer: domain.RetailerWalmart},
		browsers: &fakeBrowserProvider{page: &fakeBrowserPage{}},
		products: &fakeProductRepo{existing: map[string]bool{}},
		conns:    &fakeConnectionRepo{},
		locker:   &fakeLocker{},
		dedup:    &fakeDedup{seen: map[string]bool{}},
		sink:     &fakeSink{},
	}
	f.service = NewImportService(
		&fakeRegistry{driver: f.driver},
		f.browsers,
		f.products,
		f.conns,
		f.locker,
		f.dedup,
		nil,
		f.sink,
		zerolog.Nop(),
	)
	return f
}

func testCreds() *domain.ImportCredentials {
	return &domain.ImportCredentials{
		Retailer: "walmart",
		Username: "user@example.com",
		Password: "hunter2",
	}
}

// --- tests ---

func TestRunCredentialedImport_Success(t *testing.T) {
	f := newImportFixture()
	f.driver.orders = []domain.RawOrderRecord{
		{ProductName: "Wireless Mouse", PriceText: "$24.99", OrderDateText: "03/15/2024", OrderID: "200012345"},
		{ProductName: "USB Cable", PriceText: "$7.99", OrderDateText: "03/15/2024", OrderID: "200012345"},
	}

	result, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())

	require.NoError(t, err)
	assert.Equal(t, 2, result.ImportedCount)
	require.Len(t, result.Products, 2)
	assert.Equal(t, "Wireless Mouse", result.Products[0].Name)

	require.Len(t, f.conns.upserts, 1)
	assert.Equal(t, domain.ConnectionStatusConnected, f.conns.upserts[0].Status)
	assert.False(t, f.conns.upserts[0].LastSyncedAt.IsZero())

	require.Len(t, f.sink.events, 1)
	assert.Equal(t, domain.ImportStatusSucceeded, f.sink.events[0].Status)
	assert.Equal(t, 2, f.sink.events[0].ImportedCount)
}

func TestRunCredentialedImport_ScrubsCredentialsOnEveryPath(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newImportFixture()
		creds := testCreds()
		_, err := f.service.RunCredentialedImport(context.Background(), "user-1", creds)
		require.NoError(t, err)
		assert.Empty(t, creds.Username)
		assert.Empty(t, creds.Password)
	})

	t.Run("login failure", func(t *testing.T) {
		f := newImportFixture()
		f.driver.loginErr = domain.ErrInvalidCredentials
		creds := testCreds()
		_, err := f.service.RunCredentialedImport(context.Background(), "user-1", creds)
		require.Error(t, err)
		assert.Empty(t, creds.Username)
		assert.Empty(t, creds.Password)
	})

	t.Run("unknown retailer", func(t *testing.T) {
		f := newImportFixture()
		creds := testCreds()
		creds.Retailer = "sears"
		f.service.drivers = &fakeRegistry{err: domain.ErrUnsupportedRetailer}
		_, err := f.service.RunCredentialedImport(context.Background(), "user-1", creds)
		require.Error(t, err)
		assert.Empty(t, creds.Password)
	})
}

func TestRunCredentialedImport_BrowserClosedOnEveryPath(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newImportFixture()
		_, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())
		require.NoError(t, err)
		assert.Equal(t, 1, f.browsers.page.closed)
	})

	t.Run("login failure", func(t *testing.T) {
		f := newImportFixture()
		f.driver.loginErr = domain.ErrLoginFailed
		_, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())
		require.Error(t, err)
		assert.Equal(t, 1, f.browsers.page.closed)
	})

	t.Run("extraction failure", func(t *testing.T) {
		f := newImportFixture()
		f.driver.fetchErr = errors.New("page exploded")
		_, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())
		require.Error(t, err)
		assert.Equal(t, 1, f.browsers.page.closed)
	})

	t.Run("persistence failure", func(t *testing.T) {
		f := newImportFixture()
		f.driver.orders = []domain.RawOrderRecord{{ProductName: "Mouse"}}
		f.products.insertErr = errors.New("db down")
		_, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())
		require.Error(t, err)
		assert.Equal(t, 1, f.browsers.page.closed)
	})
}

func TestRunCredentialedImport_ZeroOrdersStillConnects(t *testing.T) {
	f := newImportFixture()
	f.driver.orders = nil

	result, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())

	require.NoError(t, err)
	assert.Zero(t, result.ImportedCount)
	assert.NotNil(t, result.Products)
	assert.Empty(t, result.Products)

	require.Len(t, f.conns.upserts, 1)
	assert.Equal(t, domain.ConnectionStatusConnected, f.conns.upserts[0].Status)
}

func TestRunCredentialedImport_LockHeld(t *testing.T) {
	f := newImportFixture()
	f.locker.held = true

	_, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())

	assert.ErrorIs(t, err, domain.ErrImportInProgress)
	assert.Zero(t, f.browsers.acquired, "no browser work while another import holds the lock")
	assert.Empty(t, f.conns.upserts)
	assert.Empty(t, f.sink.events)
}

func TestRunCredentialedImport_LockReleasedOnEveryPath(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newImportFixture()
		_, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())
		require.NoError(t, err)
		assert.Equal(t, 1, f.locker.released)
	})

	t.Run("failure", func(t *testing.T) {
		f := newImportFixture()
		f.driver.loginErr = domain.ErrChallengeRequired
		_, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())
		require.Error(t, err)
		assert.Equal(t, 1, f.locker.released)
	})
}

func TestRunCredentialedImport_FailureUpsertsErrorStatusAndEmits(t *testing.T) {
	f := newImportFixture()
	f.driver.loginErr = domain.ErrInvalidCredentials

	_, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.Len(t, f.conns.upserts, 1)
	assert.Equal(t, domain.ConnectionStatusError, f.conns.upserts[0].Status)

	require.Len(t, f.sink.events, 1)
	assert.Equal(t, domain.ImportStatusFailed, f.sink.events[0].Status)
	assert.NotEmpty(t, f.sink.events[0].Error)
}

func TestRunCredentialedImport_SkipsDuplicates(t *testing.T) {
	f := newImportFixture()
	f.driver.orders = []domain.RawOrderRecord{
		{ProductName: "Already Owned", PriceText: "$5.00", OrderDateText: "03/15/2024"},
		{ProductName: "Brand New", PriceText: "$9.00", OrderDateText: "03/15/2024"},
	}
	f.products.existing["Already Owned"] = true

	result, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())

	require.NoError(t, err)
	assert.Equal(t, 1, result.ImportedCount)
	require.Len(t, f.products.inserted, 1)
	assert.Equal(t, "Brand New", f.products.inserted[0].Name)
}

func TestRunCredentialedImport_DedupCacheErrorFallsBackToStore(t *testing.T) {
	f := newImportFixture()
	f.driver.orders = []domain.RawOrderRecord{
		{ProductName: "Mouse", PriceText: "$5.00", OrderDateText: "03/15/2024"},
	}
	f.dedup.seenErr = errors.New("redis down")

	result, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())

	require.NoError(t, err, "a broken cache must not fail the import")
	assert.Equal(t, 1, result.ImportedCount)
}

func TestRunCredentialedImport_MarksImportedKeysSeen(t *testing.T) {
	f := newImportFixture()
	f.driver.orders = []domain.RawOrderRecord{
		{ProductName: "Mouse", PriceText: "$5.00", OrderDateText: "03/15/2024"},
	}

	_, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())

	require.NoError(t, err)
	require.Len(t, f.dedup.marked, 1)
	assert.Contains(t, f.dedup.marked[0], "mouse")
	assert.NotContains(t, f.dedup.marked[0], "hunter2", "dedup keys never contain credentials")
}

func TestRunCredentialedImport_CredentialsReachDriverOnly(t *testing.T) {
	f := newImportFixture()

	_, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())

	require.NoError(t, err)
	assert.Equal(t, "user@example.com", f.driver.loginSeen.username)
	assert.Equal(t, "hunter2", f.driver.loginSeen.password)
}

func TestRunCredentialedImport_ConnectionUpsertFailureIsAnError(t *testing.T) {
	f := newImportFixture()
	f.conns.upsertErr = errors.New("db down")

	_, err := f.service.RunCredentialedImport(context.Background(), "user-1", testCreds())

	require.Error(t, err)
	require.Len(t, f.sink.events, 1)
	assert.Equal(t, domain.ImportStatusFailed, f.sink.events[0].Status)
}
