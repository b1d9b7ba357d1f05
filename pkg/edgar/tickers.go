package edgar

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrTickerNotFound is returned when the ticker is absent from the map.
var ErrTickerNotFound = eris.New("edgar: ticker not found")

// Company is one entry of the SEC ticker map.
type Company struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// PadCIK formats a CIK as the ten-digit form used by data.sec.gov.
func PadCIK(cik int64) string {
	s := strconv.FormatInt(cik, 10)
	if len(s) >= 10 {
		return s
	}
	return strings.Repeat("0", 10-len(s)) + s
}

// TickerMap resolves tickers to filers. The table is loaded on first use,
// once per process, and is read-only afterwards. Concurrent first loads
// share a single fetch. A failed load is not remembered.
type TickerMap struct {
	url    string
	getter Getter

	group singleflight.Group

	mu     sync.RWMutex
	byTick map[string]Company
	loaded bool
}

// NewTickerMap creates an unloaded map backed by the given URL.
func NewTickerMap(getter Getter, url string) *TickerMap {
	if url == "" {
		url = DefaultTickersURL
	}
	return &TickerMap{url: url, getter: getter}
}

// Lookup returns the filer for ticker (case-insensitive).
func (m *TickerMap) Lookup(ctx context.Context, ticker string) (Company, error) {
	if err := m.ensureLoaded(ctx); err != nil {
		return Company{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byTick[strings.ToUpper(strings.TrimSpace(ticker))]
	if !ok {
		return Company{}, eris.Wrapf(ErrTickerNotFound, "edgar: lookup %s", ticker)
	}
	return c, nil
}

func (m *TickerMap) ensureLoaded(ctx context.Context) error {
	m.mu.RLock()
	loaded := m.loaded
	m.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := m.group.Do("load", func() (any, error) {
		m.mu.RLock()
		done := m.loaded
		m.mu.RUnlock()
		if done {
			return nil, nil
		}

		byTick, err := m.fetch(ctx)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.byTick = byTick
		m.loaded = true
		m.mu.Unlock()

		zap.L().Debug("edgar: ticker map loaded", zap.Int("tickers", len(byTick)))
		return nil, nil
	})
	return err
}

func (m *TickerMap) fetch(ctx context.Context) (map[string]Company, error) {
	data, err := m.getter.Get(ctx, m.url)
	if err != nil {
		return nil, eris.Wrap(err, "edgar: fetch ticker map")
	}

	// The file is an object keyed by row index: {"0": {...}, "1": {...}}.
	var raw map[string]Company
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "edgar: decode ticker map")
	}

	byTick := make(map[string]Company, len(raw))
	for _, c := range raw {
		t := strings.ToUpper(c.Ticker)
		if t == "" {
			continue
		}
		if _, dup := byTick[t]; !dup {
			byTick[t] = c
		}
	}
	return byTick, nil
}
