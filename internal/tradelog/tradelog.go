package tradelog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"auto-trader/internal/interfaces"
	"auto-trader/internal/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	fileExt   = ".jsonl"
	dayLayout = "2006-01-02"

	EventTick  = "tick"
	EventOrder = "order"
)

// DayPath is the journal file for the UTC day containing t.
func DayPath(dir string, t time.Time) string {
	return filepath.Join(dir, t.UTC().Format(dayLayout)+fileExt)
}

// Journal appends one JSON line per tick, plus one per routed order, to a
// file per UTC day.
type Journal struct {
	dir string

	mu     sync.Mutex
	day    string
	file   *os.File
	logger *zap.Logger
}

var _ interfaces.Journal = (*Journal)(nil)

func New(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	return &Journal{dir: dir}, nil
}

func (j *Journal) Dir() string { return j.dir }

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "event",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// rotate opens the file for day if it is not the current one. Caller holds mu.
func (j *Journal) rotate(at time.Time) error {
	day := at.UTC().Format(dayLayout)
	if j.file != nil && j.day == day {
		return nil
	}
	if err := j.closeLocked(); err != nil {
		return err
	}
	f, err := os.OpenFile(DayPath(j.dir, at), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(f), zapcore.InfoLevel)
	j.file = f
	j.day = day
	j.logger = zap.New(core)
	return nil
}

func (j *Journal) RecordTick(_ context.Context, tick *types.TickResult) error {
	if tick == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.rotate(tick.At); err != nil {
		return err
	}

	fields := []zap.Field{
		zap.Time("at", tick.At.UTC()),
		zap.String("symbol", tick.Symbol),
		zap.Int64("tick", tick.Tick),
		zap.String("signal", tick.Signal.Signal.String()),
		zap.String("signal_reason", tick.Signal.Reason),
		zap.Bool("allow", tick.Risk.Allow),
		zap.String("severity", tick.Risk.Severity.String()),
		zap.String("risk_reason", tick.Risk.Reason),
		zap.Int("orders", len(tick.Execution.Orders)),
	}
	if tick.Execution.SkipReason != "" {
		fields = append(fields, zap.String("skip_reason", tick.Execution.SkipReason))
	}
	if tick.Position != nil {
		fields = append(fields, zap.String("position_size", tick.Position.Size.String()))
	}
	j.logger.Info(EventTick, fields...)

	for _, o := range tick.Execution.Orders {
		j.logger.Info(EventOrder,
			zap.Time("at", tick.At.UTC()),
			zap.String("symbol", o.Symbol),
			zap.String("side", o.Side.String()),
			zap.String("qty", o.Quantity.String()),
			zap.String("price", o.RefPrice.String()),
			zap.String("order_id", o.OrderID),
			zap.String("client_order_id", o.ClientOrderID),
			zap.String("status", o.Status),
			zap.String("reason", tick.Signal.Reason),
		)
	}
	return j.logger.Sync()
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closeLocked()
}

func (j *Journal) closeLocked() error {
	if j.file == nil {
		return nil
	}
	_ = j.logger.Sync()
	err := j.file.Close()
	j.file = nil
	j.logger = nil
	j.day = ""
	return err
}

// OrderLine is one routed order as read back from a journal file.
type OrderLine struct {
	Event   string          `json:"event"`
	At      time.Time       `json:"at"`
	Symbol  string          `json:"symbol"`
	Side    string          `json:"side"`
	Qty     decimal.Decimal `json:"qty"`
	Price   decimal.Decimal `json:"price"`
	OrderID string          `json:"order_id"`
	Status  string          `json:"status"`
	Reason  string          `json:"reason"`
}

// ReadOrders returns the order lines of the UTC day containing day. A
// missing file yields no orders. Malformed lines are skipped.
func ReadOrders(dir string, day time.Time) ([]OrderLine, error) {
	f, err := os.Open(DayPath(dir, day))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []OrderLine
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Bytes()
		if !strings.Contains(string(line), `"event":"order"`) {
			continue
		}
		var ol OrderLine
		if err := json.Unmarshal(line, &ol); err != nil {
			continue
		}
		out = append(out, ol)
	}
	return out, sc.Err()
}

// CompressOlder gzips journal files not modified within retentionDays and
// removes the originals. It returns how many files were compressed.
func CompressOlder(dir string, retentionDays int, now time.Time) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	n := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if err := gzipFile(p); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func gzipFile(p string) error {
	gz := p + ".gz"
	// a previous run already compressed it
	if _, err := os.Stat(gz); err == nil {
		return os.Remove(p)
	}

	in, err := os.Open(p)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(gz)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(p)
}
