package diag

// Collector is the shared Diagnostic Collector (spec §4.1): two FIFOs, one
// for errors and one for warnings. Insertion order is preserved; draining
// removes entries; there is no deduplication. The collector itself cannot
// fail.
type Collector struct {
	errors   []Diagnostic
	warnings []Warning
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Push appends a single diagnostic to the error queue.
func (c *Collector) Push(err ErrorKind, loc Location) {
	c.errors = append(c.errors, Diagnostic{Err: err, Loc: loc})
}

// PushDiagnostic appends an already-built Diagnostic.
func (c *Collector) PushDiagnostic(d Diagnostic) {
	c.errors = append(c.errors, d)
}

// Extend appends a finite sequence of diagnostics, preserving order.
func (c *Collector) Extend(ds []Diagnostic) {
	c.errors = append(c.errors, ds...)
}

// Warn appends a located warning.
func (c *Collector) Warn(message string, loc Location) {
	c.warnings = append(c.warnings, Warning{Message: message, Loc: loc})
}

// Pop removes and returns the oldest error. ok is false if the collector is
// empty.
func (c *Collector) Pop() (d Diagnostic, ok bool) {
	if len(c.errors) == 0 {
		return Diagnostic{}, false
	}

	d = c.errors[0]
	c.errors = c.errors[1:]

	return d, true
}

// Len reports the number of queued errors.
func (c *Collector) Len() int {
	return len(c.errors)
}

// HasErrors reports whether any error has been pushed.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Drain returns every queued error in insertion order and empties the
// error queue. Calling it twice in a row yields an empty slice the second
// time.
func (c *Collector) Drain() []Diagnostic {
	out := c.errors
	c.errors = nil

	return out
}

// DrainWarnings returns every queued warning in insertion order and empties
// the warning queue.
func (c *Collector) DrainWarnings() []Warning {
	out := c.warnings
	c.warnings = nil

	return out
}

// Result is the recoverable-result protocol from spec §4.1 / §9:
// Result<T> = Ok(T) | Err(E, fallback T). The error case still carries a
// usable value so that callers can keep producing well-typed output even in
// the presence of localized errors.
type Result[T any] struct {
	Value    T
	Errs     []Diagnostic
	Fallback T
	Ok       bool
}

// OkResult builds a successful Result.
func OkResult[T any](v T) Result[T] {
	return Result[T]{Value: v, Ok: true}
}

// ErrResult builds a failed Result carrying one error and a fallback value.
func ErrResult[T any](err ErrorKind, loc Location, fallback T) Result[T] {
	return Result[T]{Errs: []Diagnostic{{Err: err, Loc: loc}}, Fallback: fallback, Ok: false}
}

// ErrsResult builds a failed Result carrying several errors and a fallback
// value.
func ErrsResult[T any](errs []Diagnostic, fallback T) Result[T] {
	return Result[T]{Errs: errs, Fallback: fallback, Ok: false}
}

// Recover returns the successful value of result, or on failure pushes its
// diagnostics into c and returns the fallback (spec §4.1). Recovering a
// successful result never mutates c; recovering a failed result appends
// exactly the failure's diagnostics.
func Recover[T any](result Result[T], c *Collector) T {
	if result.Ok {
		return result.Value
	}

	c.Extend(result.Errs)

	return result.Fallback
}
