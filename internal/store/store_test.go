package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func stringPtr(v string) *string  { return &v }

func TestMerge(t *testing.T) {
	base := LoanData{Amount: floatPtr(1000), Period: intPtr(12), Rate: floatPtr(5)}
	merged := base.Merge(LoanData{Rate: floatPtr(6), InsuranceRate: floatPtr(0.02), Currency: stringPtr("EUR")})

	require.NotNil(t, merged.Amount)
	assert.Equal(t, 1000.0, *merged.Amount)
	assert.Equal(t, 12, *merged.Period)
	assert.Equal(t, 6.0, *merged.Rate)
	assert.Equal(t, 0.02, *merged.InsuranceRate)
	assert.Equal(t, "EUR", *merged.Currency)
	assert.Nil(t, merged.FixedMonths)
	assert.Nil(t, merged.VariableRate)

	// the receiver is left untouched
	assert.Equal(t, 5.0, *base.Rate)
	assert.Nil(t, base.InsuranceRate)
}

func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	data := LoanData{Amount: floatPtr(120000), Period: intPtr(24), Rate: floatPtr(5), FixedMonths: intPtr(12), VariableRate: floatPtr(8)}
	require.NoError(t, s.Save(ctx, "a", data))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 120000.0, *got.Amount)
	assert.Equal(t, 12, *got.FixedMonths)
	assert.Nil(t, got.InsuranceRate)
	assert.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, s.Save(ctx, "a", got.Merge(LoanData{Amount: floatPtr(90000)})))
	got, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 90000.0, *got.Amount)
	assert.Equal(t, 8.0, *got.VariableRate)

	_, err = s.Update(ctx, "missing", LoanData{Rate: floatPtr(1)})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := s.Update(ctx, "a", LoanData{Rate: floatPtr(6.5), Currency: stringPtr("EUR")})
	require.NoError(t, err)
	assert.Equal(t, 6.5, *updated.Rate)
	assert.Equal(t, 90000.0, *updated.Amount)
	assert.Equal(t, "EUR", *updated.Currency)

	require.NoError(t, s.Save(ctx, "fields", LoanData{}))
	var updates sync.WaitGroup
	for i := 0; i < 6; i++ {
		updates.Add(1)
		go func(i int) {
			defer updates.Done()
			partial := []LoanData{
				{Amount: floatPtr(1000)},
				{Period: intPtr(12)},
				{Rate: floatPtr(5)},
				{InsuranceRate: floatPtr(0.02)},
				{FixedMonths: intPtr(6)},
				{VariableRate: floatPtr(7)},
			}[i]
			_, err := s.Update(ctx, "fields", partial)
			assert.NoError(t, err)
		}(i)
	}
	updates.Wait()

	got, err = s.Get(ctx, "fields")
	require.NoError(t, err)
	assert.NotNil(t, got.Amount)
	assert.NotNil(t, got.Period)
	assert.NotNil(t, got.Rate)
	assert.NotNil(t, got.InsuranceRate)
	assert.NotNil(t, got.FixedMonths)
	assert.NotNil(t, got.VariableRate)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Save(ctx, "concurrent", LoanData{Period: intPtr(i + 1)}))
			_, err := s.Get(ctx, "concurrent")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	testStore(t, s)
}

func TestSQLite(t *testing.T) {
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()
	testStore(t, s)
}

func TestSQLitePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loans.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "kept", LoanData{Amount: floatPtr(5000)}))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, 5000.0, *got.Amount)
}

type mockRedisClient struct {
	mock.Mock
}

func (m *mockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *mockRedisClient) Watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *mockRedisClient) Close() error {
	return m.Called().Error(0)
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	client := new(mockRedisClient)
	s := newRedisWithClient(client, time.Hour)

	client.On("Get", ctx, "loan-data:missing").Return(redis.NewStringResult("", redis.Nil))
	client.On("Get", ctx, "loan-data:a").Return(redis.NewStringResult(`{"amount":1000,"period":12,"rate":5}`, nil))
	client.On("Get", ctx, "loan-data:broken").Return(redis.NewStringResult("", errors.New("connection refused")))
	client.On("Set", ctx, "loan-data:a", mock.Anything, time.Hour).Return(redis.NewStatusResult("OK", nil))
	client.On("Close").Return(nil)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, *got.Amount)
	assert.Equal(t, 12, *got.Period)
	assert.Nil(t, got.FixedMonths)

	require.NoError(t, s.Save(ctx, "a", got))
	require.NoError(t, s.Close())
	client.AssertExpectations(t)
}

type mockRedisTx struct {
	mock.Mock
	pipe *mockPipeliner
}

func (m *mockRedisTx) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *mockRedisTx) TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	if err := fn(m.pipe); err != nil {
		return nil, err
	}
	args := m.Called(ctx)
	return nil, args.Error(0)
}

// mockPipeliner records Set; other Pipeliner methods are not used.
type mockPipeliner struct {
	redis.Pipeliner
	mock.Mock
}

func (m *mockPipeliner) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func TestRedisMergeTx(t *testing.T) {
	ctx := context.Background()
	s := newRedisWithClient(new(mockRedisClient), time.Hour)

	pipe := new(mockPipeliner)
	tx := &mockRedisTx{pipe: pipe}
	tx.On("Get", ctx, "loan-data:a").Return(redis.NewStringResult(`{"amount":1000,"period":12,"rate":5}`, nil))
	tx.On("Get", ctx, "loan-data:missing").Return(redis.NewStringResult("", redis.Nil))
	tx.On("TxPipelined", ctx).Return(nil)

	var written []byte
	pipe.On("Set", ctx, "loan-data:a", mock.Anything, time.Hour).
		Run(func(args mock.Arguments) { written = args.Get(2).([]byte) }).
		Return(redis.NewStatusResult("OK", nil))

	merged, err := s.mergeTx(ctx, tx, "a", LoanData{Rate: floatPtr(6), Currency: stringPtr("EUR")})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, *merged.Amount)
	assert.Equal(t, 6.0, *merged.Rate)
	assert.Equal(t, "EUR", *merged.Currency)
	assert.Contains(t, string(written), `"rate":6`)
	assert.Contains(t, string(written), `"amount":1000`)

	_, err = s.mergeTx(ctx, tx, "missing", LoanData{Rate: floatPtr(6)})
	assert.ErrorIs(t, err, ErrNotFound)

	tx.AssertExpectations(t)
	pipe.AssertExpectations(t)
}

func TestRedisUpdateRetries(t *testing.T) {
	ctx := context.Background()

	t.Run("Gives up after repeated conflicts", func(t *testing.T) {
		client := new(mockRedisClient)
		client.On("Watch", ctx, []string{"loan-data:a"}).Return(redis.TxFailedErr)
		s := newRedisWithClient(client, 0)

		_, err := s.Update(ctx, "a", LoanData{Rate: floatPtr(6)})
		assert.Error(t, err)
		client.AssertNumberOfCalls(t, "Watch", redisUpdateRetries)
	})

	t.Run("Retries a conflict then reports other errors", func(t *testing.T) {
		client := new(mockRedisClient)
		client.On("Watch", ctx, []string{"loan-data:a"}).Return(redis.TxFailedErr).Once()
		client.On("Watch", ctx, []string{"loan-data:a"}).Return(ErrNotFound).Once()
		s := newRedisWithClient(client, 0)

		_, err := s.Update(ctx, "a", LoanData{Rate: floatPtr(6)})
		assert.ErrorIs(t, err, ErrNotFound)
		client.AssertNumberOfCalls(t, "Watch", 2)
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		cfg       Config
		wantError bool
	}{
		{name: "Default driver", cfg: Config{}},
		{name: "Memory", cfg: Config{Driver: "memory"}},
		{name: "SQLite", cfg: Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "data", "open.db")}},
		{name: "SQLite without path", cfg: Config{Driver: "sqlite"}, wantError: true},
		{name: "Redis without address", cfg: Config{Driver: "redis"}, wantError: true},
		{name: "Unknown driver", cfg: Config{Driver: "postgres"}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, s.Close())
		})
	}
}
