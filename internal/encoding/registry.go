package encoding

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/dshills/ropecore/internal/logging"
)

// Errors returned by Registry operations.
var (
	// ErrUnknownEncoding indicates a name that resolves to no encoding.
	ErrUnknownEncoding = errors.New("unknown encoding name")

	// ErrEncodingExists indicates a definition would shadow an existing name.
	ErrEncodingExists = errors.New("encoding already exists")
)

// Pseudo-names resolved against the registry defaults.
const (
	NameInternal   = "internal"
	NameExternal   = "external"
	NameFilesystem = "filesystem"
	NameLocale     = "locale"
)

// Registry maps names and indices to encodings and tracks the default
// external, default internal and locale encodings.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	list   []Encoding
	lookup map[string]Encoding

	external Encoding
	internal Encoding
	locale   Encoding

	logger *logging.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for locale warnings.
func WithLogger(l *logging.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry returns a registry holding every built-in encoding and alias.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		list:   make([]Encoding, len(builtins)),
		lookup: make(map[string]Encoding, len(builtins)+len(builtinAliases)),
		logger: logging.Null,
	}
	for _, opt := range opts {
		opt(r)
	}
	copy(r.list, builtins)
	for _, e := range builtins {
		r.lookup[normalize(e.Name())] = e
	}
	for alias, name := range builtinAliases {
		r.lookup[normalize(alias)] = r.lookup[normalize(name)]
	}
	return r
}

func normalize(name string) string {
	return strings.ToLower(name)
}

// Lookup resolves name case-insensitively. The pseudo-names "internal",
// "external", "filesystem" and "locale" resolve to the registry defaults,
// falling back to ASCII-8BIT when unset. Names unknown to the registry
// are resolved through the IANA index and retried under their preferred
// MIME and IANA names.
func (r *Registry) Lookup(name string) (Encoding, bool) {
	key := normalize(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	switch key {
	case NameInternal:
		return orBinary(r.internal), true
	case NameExternal, NameFilesystem:
		return orBinary(r.external), true
	case NameLocale:
		return orBinary(r.locale), true
	}

	if e, ok := r.lookup[key]; ok {
		return e, true
	}

	x, err := ianaindex.IANA.Encoding(name)
	if err != nil || x == nil {
		return nil, false
	}
	for _, index := range []*ianaindex.Index{ianaindex.MIME, ianaindex.IANA} {
		canonical, err := index.Name(x)
		if err != nil {
			continue
		}
		if e, ok := r.lookup[normalize(canonical)]; ok {
			return e, true
		}
	}
	return nil, false
}

// MustLookup is Lookup returning an error for unknown names.
func (r *Registry) MustLookup(name string) (Encoding, error) {
	e, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, name)
	}
	return e, nil
}

func orBinary(e Encoding) Encoding {
	if e == nil {
		return ASCII8BIT
	}
	return e
}

// ByIndex returns the encoding with index i.
func (r *Registry) ByIndex(i int) (Encoding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.list) {
		return nil, false
	}
	return r.list[i], true
}

// List returns every encoding in index order.
func (r *Registry) List() []Encoding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Encoding, len(r.list))
	copy(out, r.list)
	return out
}

// Len returns the number of defined encodings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.list)
}

// DefineAlias makes name resolve to enc. An existing alias is replaced.
func (r *Registry) DefineAlias(enc Encoding, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookup[normalize(name)] = enc
}

// Replicate defines a new encoding named name that behaves like enc.
func (r *Registry) Replicate(enc Encoding, name string) (Encoding, error) {
	return r.define(enc, name, false)
}

// CreateDummy defines a new dummy encoding named name.
func (r *Registry) CreateDummy(name string) (Encoding, error) {
	return r.define(ASCII8BIT, name, true)
}

func (r *Registry) define(base Encoding, name string, dummy bool) (Encoding, error) {
	key := normalize(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.lookup[key]; exists || isPseudoName(key) {
		return nil, fmt.Errorf("%w: %s", ErrEncodingExists, name)
	}

	e := &derived{Encoding: base, name: name, index: len(r.list), dummy: dummy}
	r.list = append(r.list, e)
	r.lookup[key] = e
	return e, nil
}

func isPseudoName(key string) bool {
	switch key {
	case NameInternal, NameExternal, NameFilesystem, NameLocale:
		return true
	}
	return false
}

// DefaultExternal returns the default external encoding, or nil.
func (r *Registry) DefaultExternal() Encoding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.external
}

// SetDefaultExternal sets the default external encoding.
func (r *Registry) SetDefaultExternal(e Encoding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.external = e
}

// DefaultInternal returns the default internal encoding, or nil.
func (r *Registry) DefaultInternal() Encoding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.internal
}

// SetDefaultInternal sets the default internal encoding. nil clears it.
func (r *Registry) SetDefaultInternal(e Encoding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.internal = e
}

// Locale returns the locale encoding, or nil before InitDefaults.
func (r *Registry) Locale() Encoding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locale
}

// InitDefaults resolves the locale encoding from the environment and then
// the default external and internal encodings. An empty external name
// selects the locale encoding; an empty internal name leaves it unset.
func (r *Registry) InitDefaults(getenv func(string) string, external, internal string) error {
	localeName := DetectLocale(getenv)
	loc, ok := r.Lookup(localeName)
	if !ok {
		r.logger.Warn("locale charset %q is unknown, using US-ASCII", localeName)
		loc = USASCII
	}
	if loc == USASCII {
		msg := "locale encoding is US-ASCII, this often indicates that the system locale is not set properly"
		if getenv("LANG") == "C" && getenv("LC_ALL") == "C" {
			r.logger.Debug(msg)
		} else {
			r.logger.Warn(msg)
		}
	}

	r.mu.Lock()
	r.locale = loc
	r.mu.Unlock()

	if external == "" {
		r.SetDefaultExternal(loc)
	} else {
		e, err := r.MustLookup(external)
		if err != nil {
			return fmt.Errorf("default external: %w", err)
		}
		r.SetDefaultExternal(e)
	}

	if internal != "" {
		e, err := r.MustLookup(internal)
		if err != nil {
			return fmt.Errorf("default internal: %w", err)
		}
		r.SetDefaultInternal(e)
	}
	return nil
}

// DetectLocale returns the charset name of the active locale, taken from
// the first non-empty of LC_ALL, LC_CTYPE and LANG. The C and POSIX
// locales map to US-ASCII; a locale without a charset maps to ISO-8859-1.
func DetectLocale(getenv func(string) string) string {
	var locale string
	for _, v := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if locale = getenv(v); locale != "" {
			break
		}
	}
	if locale == "" || locale == "C" || locale == "POSIX" {
		return "US-ASCII"
	}

	if i := strings.IndexByte(locale, '@'); i >= 0 {
		locale = locale[:i]
	}
	dot := strings.IndexByte(locale, '.')
	if dot < 0 {
		return "ISO-8859-1"
	}
	charset := locale[dot+1:]
	switch strings.ToLower(strings.ReplaceAll(charset, "-", "")) {
	case "utf8":
		return "UTF-8"
	case "eucjp":
		return "EUC-JP"
	}
	return charset
}
