// Package nav maps a vertical scroll offset onto the page section that the
// navigation bar should highlight.
package nav

// Default geometry constants, in pixels.
const (
	DefaultHeaderOffset     = 150
	DefaultActivationOffset = 100
	DefaultHomeTolerance    = 100
)

// DefaultSections is the page order of the community site anchors.
var DefaultSections = []string{"home", "about", "team", "projects", "resources", "events", "blog", "contact"}

// Rect is the vertical extent of a section.
type Rect struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Layout holds the geometry of the sections currently on the page. Sections
// that are not rendered yet are simply absent.
type Layout map[string]Rect

// State is the result of one scroll evaluation.
type State struct {
	Active           string
	ScrolledPastHome bool
}

// Tracker is a pure function of scroll offset and layout. The zero value is
// not usable; build one with NewTracker.
type Tracker struct {
	sections         []string
	headerOffset     float64
	activationOffset float64
	homeTolerance    float64
}

type Option func(*Tracker)

func WithHeaderOffset(px float64) Option {
	return func(t *Tracker) { t.headerOffset = px }
}

func WithActivationOffset(px float64) Option {
	return func(t *Tracker) { t.activationOffset = px }
}

func WithHomeTolerance(px float64) Option {
	return func(t *Tracker) { t.homeTolerance = px }
}

// NewTracker builds a tracker for sections in page order. An empty list
// falls back to DefaultSections. The first section acts as "home".
func NewTracker(sections []string, opts ...Option) *Tracker {
	if len(sections) == 0 {
		sections = DefaultSections
	}
	t := &Tracker{
		sections:         append([]string(nil), sections...),
		headerOffset:     DefaultHeaderOffset,
		activationOffset: DefaultActivationOffset,
		homeTolerance:    DefaultHomeTolerance,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Sections() []string {
	return append([]string(nil), t.sections...)
}

// OnScroll evaluates scrollY against layout.
//
// A section is active when scrollY+headerOffset lies in
// [Top-activationOffset, Bottom-activationOffset). Ranges are half-open, so
// at a shared boundary the later section wins. When no range matches, the
// last section whose adjusted top has been passed wins, and before any has
// been passed the first section is active.
func (t *Tracker) OnScroll(scrollY float64, layout Layout) State {
	st := State{Active: t.sections[0]}

	if home, ok := layout[t.sections[0]]; ok {
		st.ScrolledPastHome = scrollY > home.Bottom()-t.homeTolerance
	}

	pos := scrollY + t.headerOffset
	passed := ""
	for _, id := range t.sections {
		r, ok := layout[id]
		if !ok {
			continue
		}
		lo, hi := r.Top-t.activationOffset, r.Bottom()-t.activationOffset
		if pos >= lo && pos < hi {
			st.Active = id
			return st
		}
		if lo <= pos {
			passed = id
		}
	}
	if passed != "" {
		st.Active = passed
	}
	return st
}
