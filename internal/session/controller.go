// Package session coordinates one browsing session: it owns the connection,
// the selected table, the last QuerySpec and the displayed results, and
// refreshes the results after every mutation.
//
// All renderers (terminal UI, shell, web UI and one-shot commands) drive the
// same Controller. Operations are serialised on the single connection; View
// never waits for an operation in flight.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leaptable/internal/schema"
	"github.com/leapstack-labs/leaptable/pkg/adapter"
	"github.com/leapstack-labs/leaptable/pkg/core"
	"github.com/leapstack-labs/leaptable/pkg/querybuilder"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDefaultTable selects and loads the named table right after Connect.
func WithDefaultTable(table string) Option {
	return func(c *Controller) {
		c.defaultTable = table
	}
}

// Controller is the session state machine.
type Controller struct {
	adp          adapter.Adapter
	cfg          core.AdapterConfig
	defaultTable string
	logger       *slog.Logger

	// opMu serialises operations; mu guards the fields below it.
	opMu sync.Mutex

	mu        sync.RWMutex
	state     State
	formFrom  State
	schemas   *schema.Introspector
	builder   *querybuilder.Builder
	tables    []string
	table     *core.TableSchema
	spec      core.QuerySpec
	results   *core.ResultSet
	total     int64
	busy      string
	lastErr   error
	subs      map[int]func(View)
	nextSubID int
}

// New creates a disconnected Controller for adp. cfg is used by Connect
// unless adp is already connected.
func New(adp adapter.Adapter, cfg core.AdapterConfig, opts ...Option) *Controller {
	c := &Controller{
		adp:    adp,
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
		total:  -1,
		subs:   make(map[int]func(View)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View returns a snapshot of the session.
func (c *Controller) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	return View{
		State:   c.state,
		Tables:  append([]string(nil), c.tables...),
		Schema:  c.table,
		Spec:    c.spec,
		Results: c.results,
		Total:   c.total,
		Busy:    c.busy,
		Err:     c.lastErr,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Dialect returns the connected adapter's dialect name.
func (c *Controller) Dialect() string {
	return c.adp.Dialect().Name
}

// Subscribe registers fn to be called with a fresh View after every
// operation. fn runs on the goroutine that performed the operation and must
// not call Controller operations synchronously. The returned func removes it.
func (c *Controller) Subscribe(fn func(View)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Controller) notify() {
	c.mu.RLock()
	v := c.viewLocked()
	subs := make([]func(View), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.RUnlock()

	for _, fn := range subs {
		fn(v)
	}
}

// run executes fn as one serialised operation, tracking busy and error state
// and notifying subscribers when it completes.
func (c *Controller) run(ctx context.Context, op string, fn func(ctx context.Context, log *slog.Logger) error) error {
	c.opMu.Lock()

	c.mu.Lock()
	c.busy = op
	c.mu.Unlock()

	log := c.logger.With(slog.String("op", op), slog.String("op_id", uuid.NewString()))
	start := time.Now()
	err := fn(ctx, log)

	c.mu.Lock()
	c.busy = ""
	c.lastErr = err
	c.mu.Unlock()

	if err != nil {
		log.Debug("operation failed", slog.Duration("duration", time.Since(start)), slog.Any("error", err))
	} else {
		log.Debug("operation done", slog.Duration("duration", time.Since(start)))
	}

	c.opMu.Unlock()
	c.notify()
	return err
}

func (c *Controller) requireState(op string, allowed ...State) error {
	c.mu.RLock()
	st := c.state
	c.mu.RUnlock()
	for _, a := range allowed {
		if st == a {
			return nil
		}
	}
	return core.NewStateError(op, fmt.Sprintf("not allowed while %s", st))
}

// requireTable fails when table is set and is not the selected table. It
// runs inside an operation, so no other caller can switch tables between
// the check and the statement.
func (c *Controller) requireTable(op, table string) error {
	if table == "" {
		return nil
	}
	s, _ := c.current()
	if s.Matches(table) {
		return nil
	}
	current := "no table"
	if s != nil {
		current = s.QualifiedName()
	}
	return core.NewStateError(op, fmt.Sprintf("table %s is not selected, %s is", table, current))
}

// Connect opens the connection and lists tables. When a default table is
// configured it is selected and its first page loaded.
func (c *Controller) Connect(ctx context.Context) error {
	return c.run(ctx, "connect", func(ctx context.Context, log *slog.Logger) error {
		if err := c.requireState("connect", Disconnected); err != nil {
			return err
		}

		if !isConnected(c.adp) {
			if err := c.adp.Connect(ctx, c.cfg); err != nil {
				return err
			}
		}
		log.Info("connected", slog.String("dialect", c.adp.Dialect().Name), slog.String("database", c.cfg.Database))

		schemas := schema.New(c.adp, c.logger)
		tables, err := schemas.ListTables(ctx)
		if err != nil {
			return err
		}

		c.mu.Lock()
		c.schemas = schemas
		c.builder = querybuilder.New(c.adp.Dialect())
		c.tables = tables
		c.state = Connected
		c.mu.Unlock()

		if c.defaultTable == "" {
			return nil
		}
		if err := c.selectTable(ctx, c.defaultTable); err != nil {
			return err
		}
		return c.search(ctx, log, c.spec)
	})
}

type connectedChecker interface {
	IsConnected() bool
}

func isConnected(adp adapter.Adapter) bool {
	cc, ok := adp.(connectedChecker)
	return ok && cc.IsConnected()
}

// Close closes the connection and returns to Disconnected.
func (c *Controller) Close() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	c.state = Disconnected
	c.table, c.results, c.tables = nil, nil, nil
	c.mu.Unlock()

	return c.adp.Close()
}

// SelectTable loads the named table's schema, discards the results and
// resets the QuerySpec. It does not run a search.
func (c *Controller) SelectTable(ctx context.Context, name string) error {
	return c.run(ctx, "select table", func(ctx context.Context, _ *slog.Logger) error {
		if err := c.requireState("select table", Connected, TableSelected, ResultsDisplayed, FormOpen); err != nil {
			return err
		}
		return c.selectTable(ctx, name)
	})
}

func (c *Controller) selectTable(ctx context.Context, name string) error {
	s, err := c.schemas.Load(ctx, name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = s
	c.results = nil
	c.total = -1
	c.spec = DefaultSpec(s)
	c.state = TableSelected
	return nil
}

// Search runs spec against the selected table and replaces the results.
func (c *Controller) Search(ctx context.Context, spec core.QuerySpec) error {
	return c.run(ctx, "search", func(ctx context.Context, log *slog.Logger) error {
		if err := c.requireState("search", TableSelected, ResultsDisplayed); err != nil {
			return err
		}
		return c.search(ctx, log, spec)
	})
}

// Refresh re-runs the last QuerySpec.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.run(ctx, "refresh", func(ctx context.Context, log *slog.Logger) error {
		if err := c.requireState("refresh", TableSelected, ResultsDisplayed); err != nil {
			return err
		}
		return c.search(ctx, log, c.currentSpec())
	})
}

func (c *Controller) currentSpec() core.QuerySpec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spec
}

func (c *Controller) current() (*core.TableSchema, *querybuilder.Builder) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table, c.builder
}

func (c *Controller) search(ctx context.Context, log *slog.Logger, spec core.QuerySpec) error {
	s, b := c.current()

	stmt, err := b.Select(s, spec)
	if err != nil {
		return err
	}
	log.Debug("executing select", slog.String("sql", stmt.SQL), slog.Any("args", stmt.Args))

	start := time.Now()
	rows, err := c.adp.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return core.NewQueryError("search", "select failed", err)
	}
	rs, err := adapter.CollectResultSet(rows, s.KeyNames()...)
	if err != nil {
		return core.NewQueryError("search", "reading results failed", err)
	}
	rs.Table = s.QualifiedName()
	rs.Spec = spec
	rs.Duration = time.Since(start)

	total := int64(rs.Len())
	if spec.Limit != core.NoLimit {
		total = c.count(ctx, log, s, spec)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.spec = spec
	c.results = rs
	c.total = total
	c.state = ResultsDisplayed
	return nil
}

// count returns the number of rows matching spec's filter, or -1.
func (c *Controller) count(ctx context.Context, log *slog.Logger, s *core.TableSchema, spec core.QuerySpec) int64 {
	_, b := c.current()
	stmt, err := b.Count(s, spec)
	if err != nil {
		return -1
	}
	rows, err := c.adp.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		log.Debug("count failed", slog.Any("error", err))
		return -1
	}
	defer func() { _ = rows.Close() }()

	var n int64
	if !rows.Next() || rows.Scan(&n) != nil {
		return -1
	}
	return n
}

// OpenInsertForm enters FormOpen. Nothing touches the database until
// SubmitInsert.
func (c *Controller) OpenInsertForm() error {
	return c.run(context.Background(), "open insert form", func(context.Context, *slog.Logger) error {
		if err := c.requireState("open insert form", TableSelected, ResultsDisplayed); err != nil {
			return err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.formFrom = c.state
		c.state = FormOpen
		return nil
	})
}

// CancelInsert leaves FormOpen without touching the database.
func (c *Controller) CancelInsert() error {
	return c.run(context.Background(), "cancel insert", func(context.Context, *slog.Logger) error {
		if err := c.requireState("cancel insert", FormOpen); err != nil {
			return err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.state = c.formFrom
		return nil
	})
}

// SubmitInsert inserts one row from the open form and refreshes the results.
// Columns missing from values get the database defaults. On failure the form
// stays open.
func (c *Controller) SubmitInsert(ctx context.Context, values map[string]any) (int64, error) {
	return c.submitInsert(ctx, "", values)
}

func (c *Controller) submitInsert(ctx context.Context, table string, values map[string]any) (int64, error) {
	var affected int64
	err := c.run(ctx, "insert", func(ctx context.Context, log *slog.Logger) error {
		if err := c.requireState("insert", FormOpen); err != nil {
			return err
		}
		if err := c.requireTable("insert", table); err != nil {
			return err
		}
		n, err := c.insert(ctx, log, values)
		if err != nil {
			return err
		}
		affected = n

		c.mu.Lock()
		c.state = c.formFrom
		c.mu.Unlock()
		return c.refreshAfter(ctx, log, "insert")
	})
	return affected, err
}

// InsertRow is OpenInsertForm followed by SubmitInsert, for callers without
// a form.
func (c *Controller) InsertRow(ctx context.Context, values map[string]any) (int64, error) {
	return c.InsertRowIn(ctx, "", values)
}

// InsertRowIn is InsertRow that fails with a StateError unless table is
// still the selected table. An empty table matches any.
func (c *Controller) InsertRowIn(ctx context.Context, table string, values map[string]any) (int64, error) {
	if err := c.OpenInsertForm(); err != nil {
		return 0, err
	}
	n, err := c.submitInsert(ctx, table, values)
	if err != nil && c.State() == FormOpen {
		_ = c.CancelInsert()
	}
	return n, err
}

func (c *Controller) insert(ctx context.Context, log *slog.Logger, values map[string]any) (int64, error) {
	s, b := c.current()
	stmt, err := b.Insert(s, values)
	if err != nil {
		return 0, err
	}
	return c.exec(ctx, log, "insert", stmt)
}

// UpdateCell sets one cell of a displayed row. The row is matched on the
// identity value captured when the results were read.
func (c *Controller) UpdateCell(ctx context.Context, row, column int, value any) (int64, error) {
	var affected int64
	err := c.run(ctx, "update", func(ctx context.Context, log *slog.Logger) error {
		if err := c.requireState("update", ResultsDisplayed); err != nil {
			return err
		}
		key, err := c.rowKey("update", row)
		if err != nil {
			return err
		}
		s, _ := c.current()
		if column < 0 || column >= len(s.Columns) {
			return core.NewStateError("update", fmt.Sprintf("column %d out of range", column))
		}
		affected, err = c.update(ctx, log, key, s.Columns[column].Name, value)
		return err
	})
	return affected, err
}

// UpdateByKey sets column to value on the row whose identity columns equal
// key, one value per key column.
func (c *Controller) UpdateByKey(ctx context.Context, key []any, column string, value any) (int64, error) {
	return c.UpdateByKeyIn(ctx, "", key, column, value)
}

// UpdateByKeyIn is UpdateByKey that fails with a StateError unless table is
// still the selected table. An empty table matches any.
func (c *Controller) UpdateByKeyIn(ctx context.Context, table string, key []any, column string, value any) (int64, error) {
	var affected int64
	err := c.run(ctx, "update", func(ctx context.Context, log *slog.Logger) error {
		if err := c.requireState("update", TableSelected, ResultsDisplayed); err != nil {
			return err
		}
		if err := c.requireTable("update", table); err != nil {
			return err
		}
		var err error
		affected, err = c.update(ctx, log, key, column, value)
		return err
	})
	return affected, err
}

func (c *Controller) update(ctx context.Context, log *slog.Logger, key []any, column string, value any) (int64, error) {
	s, b := c.current()
	stmt, err := b.Update(s, key, column, value)
	if err != nil {
		return 0, err
	}
	n, err := c.exec(ctx, log, "update", stmt)
	if err != nil {
		return 0, err
	}
	return n, c.refreshAfter(ctx, log, "update")
}

// DeleteRow deletes a displayed row by its captured identity values.
func (c *Controller) DeleteRow(ctx context.Context, row int) (int64, error) {
	var affected int64
	err := c.run(ctx, "delete", func(ctx context.Context, log *slog.Logger) error {
		if err := c.requireState("delete", ResultsDisplayed); err != nil {
			return err
		}
		key, err := c.rowKey("delete", row)
		if err != nil {
			return err
		}
		affected, err = c.delete(ctx, log, key)
		return err
	})
	return affected, err
}

// DeleteByKey deletes the row whose identity columns equal key.
func (c *Controller) DeleteByKey(ctx context.Context, key []any) (int64, error) {
	return c.DeleteByKeyIn(ctx, "", key)
}

// DeleteByKeyIn is DeleteByKey that fails with a StateError unless table is
// still the selected table. An empty table matches any.
func (c *Controller) DeleteByKeyIn(ctx context.Context, table string, key []any) (int64, error) {
	var affected int64
	err := c.run(ctx, "delete", func(ctx context.Context, log *slog.Logger) error {
		if err := c.requireState("delete", TableSelected, ResultsDisplayed); err != nil {
			return err
		}
		if err := c.requireTable("delete", table); err != nil {
			return err
		}
		var err error
		affected, err = c.delete(ctx, log, key)
		return err
	})
	return affected, err
}

func (c *Controller) delete(ctx context.Context, log *slog.Logger, key []any) (int64, error) {
	s, b := c.current()
	stmt, err := b.Delete(s, key)
	if err != nil {
		return 0, err
	}
	n, err := c.exec(ctx, log, "delete", stmt)
	if err != nil {
		return 0, err
	}
	return n, c.refreshAfter(ctx, log, "delete")
}

func (c *Controller) rowKey(op string, row int) ([]any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if row < 0 || row >= c.results.Len() {
		return nil, core.NewStateError(op, fmt.Sprintf("row %d is not in the current results", row))
	}
	return c.results.Rows[row].Key, nil
}

func (c *Controller) exec(ctx context.Context, log *slog.Logger, op string, stmt querybuilder.Statement) (int64, error) {
	log.Debug("executing statement", slog.String("sql", stmt.SQL), slog.Any("args", stmt.Args))
	n, err := c.adp.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, core.NewQueryError(op, "statement failed", err)
	}
	if n > 1 && op != "insert" {
		s, _ := c.current()
		log.Warn("statement affected more than one row, identity values are not unique",
			slog.String("table", s.QualifiedName()),
			slog.String("identity", strings.Join(s.KeyNames(), ",")),
			slog.Int64("rows", n))
	}
	log.Info(op+" applied", slog.Int64("rows", n))
	return n, nil
}

func (c *Controller) refreshAfter(ctx context.Context, log *slog.Logger, op string) error {
	if err := c.search(ctx, log, c.currentSpec()); err != nil {
		return fmt.Errorf("refresh after %s: %w", op, err)
	}
	return nil
}
