package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/deshdata/voterquery/internal/domain"
	"github.com/deshdata/voterquery/internal/index"
)

// newIndexForTest runs a single attempt per call so every mock expectation
// maps to exactly one command. Retry behavior has its own tests below.
func newIndexForTest(c rueidis.Client) *Index {
	return &Index{client: c, prefix: "voterquery", dim: 2, m: 16, efConstruct: 200, maxAttempts: 1}
}

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	x := newIndexForTest(c)
	if err := x.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	x := newIndexForTest(c)
	if err := x.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch_NoGeneration(t *testing.T) {
	x := newIndexForTest(nil) // client not called
	_, err := x.Search(context.Background(), []float32{0.1, 0.2}, 5)
	if !errors.Is(err, domain.ErrSnapshotNotReady) {
		t.Fatalf("err = %v, want ErrSnapshotNotReady", err)
	}
}

func TestSearch_Validation(t *testing.T) {
	x := newIndexForTest(nil)
	ctx := context.Background()

	if _, err := x.Search(ctx, []float32{0.1, 0.2}, 0); err == nil {
		t.Error("expected error for k=0")
	}
	if _, err := x.Search(ctx, []float32{0.1}, 5); err == nil {
		t.Error("expected error for dimension mismatch")
	}
}

func TestRebuildThenSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE" && cmd[1] == "voterquery:g1:idx"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{mock.Result(mock.RedisInt64(1))})

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[1] == "voterquery:g1:idx"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1), // total
			mock.RedisString("voterquery:g1:42"),
			mock.RedisArray(
				mock.RedisString("__vector_score"),
				mock.RedisString("0.1"), // distance 0.1 → similarity 0.9
			),
		)))

	x := newIndexForTest(c)
	ctx := context.Background()

	err := x.Rebuild(ctx, []index.Entry{{ID: "42", Vector: []float32{0.1, 0.2}}})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	hits, err := x.Search(ctx, []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if hits[0].ID != "42" {
		t.Errorf("id = %s, want 42 (generation prefix stripped)", hits[0].ID)
	}
	if hits[0].Score < 0.89 || hits[0].Score > 0.91 {
		t.Errorf("score = %f, want ~0.9", hits[0].Score)
	}
}

func TestRebuild_DropsPreviousGeneration(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE" && cmd[1] == "voterquery:g2:idx"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{mock.Result(mock.RedisInt64(1))})

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.DROPINDEX" && cmd[1] == "voterquery:g1:idx" && cmd[2] == "DD"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	x := newIndexForTest(c)
	x.gen.publish(1)

	err := x.Rebuild(context.Background(), []index.Entry{{ID: "1", Vector: []float32{1, 0}}})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if got := x.gen.current(); got != 2 {
		t.Errorf("generation = %d, want 2", got)
	}
}

func TestRebuild_DimensionMismatch(t *testing.T) {
	// Entries are validated before any command goes out; a nil client
	// proves nothing reaches the store.
	x := newIndexForTest(nil)
	err := x.Rebuild(context.Background(), []index.Entry{{ID: "1", Vector: []float32{1, 0, 0}}})
	if err == nil {
		t.Fatal("expected error for dimension mismatch")
	}
	if got := x.gen.current(); got != 0 {
		t.Errorf("generation = %d, want 0 (failed rebuild must not publish)", got)
	}
}

func TestSearch_ServerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	x := newIndexForTest(c)
	x.gen.publish(1)

	_, err := x.Search(context.Background(), []float32{0.1, 0.2}, 5)
	if !errors.Is(err, domain.ErrRetrievalUnavailable) {
		t.Fatalf("err = %v, want ErrRetrievalUnavailable", err)
	}
}

func TestSearch_RetriesTransientFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.ErrorResult(errors.New("dial tcp 127.0.0.1:6379: connection refused")))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	x := newIndexForTest(c)
	x.maxAttempts = 3
	x.initialBackoff = time.Millisecond
	x.gen.publish(1)

	hits, err := x.Search(context.Background(), []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("transient failure must be retried, got %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %d, want 0", len(hits))
	}
}

func TestSearch_GivesUpAfterBoundedAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.ErrorResult(errors.New("dial tcp 127.0.0.1:6379: connection refused"))).
		Times(3)

	x := newIndexForTest(c)
	x.maxAttempts = 3
	x.initialBackoff = time.Millisecond
	x.gen.publish(1)

	_, err := x.Search(context.Background(), []float32{0.1, 0.2}, 5)
	if !errors.Is(err, domain.ErrRetrievalUnavailable) {
		t.Fatalf("err = %v, want ErrRetrievalUnavailable", err)
	}
}

func TestSearch_ServerErrorNotRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	x := newIndexForTest(c)
	x.maxAttempts = 3
	x.initialBackoff = time.Millisecond
	x.gen.publish(1)

	_, err := x.Search(context.Background(), []float32{0.1, 0.2}, 5)
	if !errors.Is(err, domain.ErrRetrievalUnavailable) {
		t.Fatalf("err = %v, want ErrRetrievalUnavailable", err)
	}
}

func TestSearch_EmptyResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	x := newIndexForTest(c)
	x.gen.publish(1)

	hits, err := x.Search(context.Background(), []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %d, want 0", len(hits))
	}
}

func TestVectorToBytes(t *testing.T) {
	b := vectorToBytes([]float32{1.0, 2.0})
	if len(b) != 8 {
		t.Fatalf("len = %d, want 8", len(b))
	}
}
