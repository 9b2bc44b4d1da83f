package client

import (
	"github.com/coachpo/orientwire/internal/message"
)

// Command execution defaults, matching the server-side conventions for
// interactive queries.
const (
	// DefaultLimit caps query results when no limit option is given.
	DefaultLimit int32 = 20
	// DefaultFetchPlan prefetches nothing beyond the selected records.
	DefaultFetchPlan = "*:0"
)

type commandParams struct {
	limit      int32
	fetchPlan  string
	language   string
	onPrefetch func(*Record)
}

// CommandOption adjusts one command or query execution.
type CommandOption func(*commandParams)

// LimitOption caps the number of records a query returns; -1 lifts the
// cap.
func LimitOption(n int32) CommandOption {
	return func(p *commandParams) { p.limit = n }
}

// FetchPlanOption sets the fetch plan connected records are prefetched
// through.
func FetchPlanOption(plan string) CommandOption {
	return func(p *commandParams) { p.fetchPlan = plan }
}

// LanguageOption sets the scripting language of a Batch call, default
// sql.
func LanguageOption(lang string) CommandOption {
	return func(p *commandParams) { p.language = lang }
}

// PrefetchOption delivers records the fetch plan pulled in alongside the
// primary result to fn, in wire order.
func PrefetchOption(fn func(*Record)) CommandOption {
	return func(p *commandParams) { p.onPrefetch = fn }
}

func newCommandParams(opts []CommandOption) commandParams {
	p := commandParams{limit: DefaultLimit, fetchPlan: DefaultFetchPlan}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func (p commandParams) deliverPrefetched(records []*Record) {
	if p.onPrefetch == nil {
		return
	}
	for _, rec := range records {
		p.onPrefetch(rec)
	}
}

// Query runs an idempotent SQL query and returns the selected records.
func (c *Client) Query(text string, opts ...CommandOption) ([]*Record, error) {
	result, err := c.runSync("query", text, newCommandParams(opts))
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// QueryAsync streams an idempotent SQL query: every selected record is
// handed to onRecord on the calling goroutine, in arrival order. It
// returns the number of records delivered.
func (c *Client) QueryAsync(text string, onRecord func(*Record), opts ...CommandOption) (int, error) {
	p := newCommandParams(opts)
	msg, err := prepare[*message.Command](c, "query_async")
	if err != nil {
		return 0, err
	}
	msg.Text = text
	msg.Limit = p.limit
	msg.FetchPlan = p.fetchPlan
	msg.OnRecord = onRecord
	res, err := c.disp.Dispatch("query_async", msg)
	if err != nil {
		return 0, err
	}
	result := res.(message.AsyncResult)
	p.deliverPrefetched(result.Prefetched)
	return result.Delivered, nil
}

// Command executes a SQL statement and returns the full decoded answer:
// records for selects, a flat value for scalar statements, or a null
// marker.
func (c *Client) Command(text string, opts ...CommandOption) (CommandResult, error) {
	return c.runSync("command", text, newCommandParams(opts))
}

// Batch executes a server-side script, default language sql, and returns
// the decoded answer.
func (c *Client) Batch(script string, opts ...CommandOption) (CommandResult, error) {
	return c.runSync("batch", script, newCommandParams(opts))
}

// Gremlin runs a Gremlin traversal and returns the selected records.
func (c *Client) Gremlin(text string, opts ...CommandOption) ([]*Record, error) {
	result, err := c.runSync("gremlin", text, newCommandParams(opts))
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

func (c *Client) runSync(name, text string, p commandParams) (CommandResult, error) {
	msg, err := prepare[*message.Command](c, name)
	if err != nil {
		return CommandResult{}, err
	}
	msg.Text = text
	msg.Limit = p.limit
	msg.FetchPlan = p.fetchPlan
	msg.Language = p.language
	res, err := c.disp.Dispatch(name, msg)
	if err != nil {
		return CommandResult{}, err
	}
	result := res.(message.CommandResult)
	p.deliverPrefetched(result.Prefetched)
	return result, nil
}
