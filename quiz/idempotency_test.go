package quiz

import (
	"context"
	"errors"
	"testing"
	"time"

	"awsoramazon/backend/types"
)

type mapResponses struct {
	records  map[string]types.StoredResponse
	ttls     map[string]time.Duration
	findErr  error
	lostSave bool
}

func newMapResponses() *mapResponses {
	return &mapResponses{records: map[string]types.StoredResponse{}, ttls: map[string]time.Duration{}}
}

func (m *mapResponses) FindResponse(_ context.Context, key string) (*types.StoredResponse, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if r, ok := m.records[key]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *mapResponses) SaveResponse(_ context.Context, key string, resp types.StoredResponse, ttl time.Duration) (bool, error) {
	if m.lostSave {
		return false, nil
	}
	if _, ok := m.records[key]; ok {
		return false, nil
	}
	m.records[key] = resp
	m.ttls[key] = ttl
	return true, nil
}

func computeWith(status int, body string, calls *int) func(context.Context) (types.StoredResponse, error) {
	return func(context.Context) (types.StoredResponse, error) {
		*calls++
		return types.StoredResponse{StatusCode: status, Body: body}, nil
	}
}

// TestReplayerReplaysVerbatim verifies a second call with the same key skips compute.
func TestReplayerReplaysVerbatim(t *testing.T) {
	store := newMapResponses()
	r := NewReplayer(store)
	calls := 0

	first, replayed, err := r.Do(context.Background(), "k1", computeWith(200, `{"score":1}`, &calls))
	if err != nil || replayed {
		t.Fatalf("first call: replayed=%v err=%v", replayed, err)
	}
	second, replayed, err := r.Do(context.Background(), "k1", computeWith(200, `{"score":2}`, &calls))
	if err != nil || !replayed {
		t.Fatalf("second call: replayed=%v err=%v", replayed, err)
	}
	if first.Body != second.Body || second.Body != `{"score":1}` {
		t.Fatalf("expected verbatim replay, got %q then %q", first.Body, second.Body)
	}
	if calls != 1 {
		t.Fatalf("expected one compute, got %d", calls)
	}
	if store.ttls["k1"] != 6*time.Hour {
		t.Fatalf("expected 6h retention, got %v", store.ttls["k1"])
	}
}

// TestReplayerWithoutKey verifies no caching happens without a token.
func TestReplayerWithoutKey(t *testing.T) {
	store := newMapResponses()
	r := NewReplayer(store)
	calls := 0
	for i := 0; i < 2; i++ {
		if _, replayed, err := r.Do(context.Background(), "", computeWith(200, "{}", &calls)); err != nil || replayed {
			t.Fatalf("call %d: replayed=%v err=%v", i, replayed, err)
		}
	}
	if calls != 2 || len(store.records) != 0 {
		t.Fatalf("expected two computes and no records, got %d/%d", calls, len(store.records))
	}
}

// TestReplayerSkipsFailures verifies only successful responses are stored.
func TestReplayerSkipsFailures(t *testing.T) {
	store := newMapResponses()
	r := NewReplayer(store)
	calls := 0
	resp, _, err := r.Do(context.Background(), "k", computeWith(400, `{"error":{}}`, &calls))
	if err != nil || resp.StatusCode != 400 {
		t.Fatalf("unexpected %+v %v", resp, err)
	}
	if len(store.records) != 0 {
		t.Fatalf("failure response was stored")
	}
	resp, replayed, _ := r.Do(context.Background(), "k", computeWith(200, "{}", &calls))
	if replayed || resp.StatusCode != 200 || calls != 2 {
		t.Fatalf("expected recompute after failure, got %+v replayed=%v calls=%d", resp, replayed, calls)
	}
}

// TestReplayerPropagatesStoreErrors verifies lookup faults surface.
func TestReplayerPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("unavailable")
	store := newMapResponses()
	store.findErr = boom
	calls := 0
	_, _, err := NewReplayer(store).Do(context.Background(), "k", computeWith(200, "{}", &calls))
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("compute ran despite lookup failure")
	}
}

// TestReplayerReturnsWinnerOnLostSave verifies a request that loses the save
// race answers with the record that won, not its own result.
func TestReplayerReturnsWinnerOnLostSave(t *testing.T) {
	store := newMapResponses()
	r := NewReplayer(store)
	winner := types.StoredResponse{StatusCode: 200, Body: `{"score":1}`}

	// Another request with the same key saves between this one's miss and save.
	resp, replayed, err := r.Do(context.Background(), "k", func(context.Context) (types.StoredResponse, error) {
		store.records["k"] = winner
		return types.StoredResponse{StatusCode: 200, Body: `{"score":0}`}, nil
	})
	if err != nil || !replayed {
		t.Fatalf("expected replay of the winner, replayed=%v err=%v", replayed, err)
	}
	if resp.Body != winner.Body {
		t.Fatalf("expected %q, got %q", winner.Body, resp.Body)
	}

	again, _, _ := r.Do(context.Background(), "k", computeWith(200, `{"score":2}`, new(int)))
	if again.Body != resp.Body {
		t.Fatalf("expected the same body on retry, got %q then %q", resp.Body, again.Body)
	}
}

// TestReplayerLostSaveWithoutRecord verifies the fresh response is returned
// when the winning record has already gone.
func TestReplayerLostSaveWithoutRecord(t *testing.T) {
	store := newMapResponses()
	store.lostSave = true
	calls := 0
	resp, replayed, err := NewReplayer(store).Do(context.Background(), "k", computeWith(200, `{"score":1}`, &calls))
	if err != nil || replayed || resp.Body != `{"score":1}` {
		t.Fatalf("unexpected %+v replayed=%v err=%v", resp, replayed, err)
	}
}
