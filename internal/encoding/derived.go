package encoding

// derived is an encoding that behaves like its base under a different
// name. Dummy encodings are derived encodings that are never ASCII
// compatible; strings tagged with them are treated as opaque bytes.
type derived struct {
	Encoding
	name  string
	index int
	dummy bool
}

func (d *derived) Name() string   { return d.name }
func (d *derived) String() string { return d.name }
func (d *derived) Index() int     { return d.index }
func (d *derived) IsDummy() bool  { return d.dummy || d.Encoding.IsDummy() }

func (d *derived) IsASCIICompatible() bool {
	return !d.IsDummy() && d.Encoding.IsASCIICompatible()
}

// Base returns the encoding d was derived from.
func (d *derived) Base() Encoding { return d.Encoding }

func (d *derived) setIndex(i int) { d.index = i }
func (e *info) setIndex(i int)    { e.index = i }

type indexed interface {
	setIndex(int)
}

// Built-in dummy encodings.
var (
	UTF7  Encoding = &derived{Encoding: ASCII8BIT, name: "UTF-7", dummy: true}
	UTF16 Encoding = &derived{Encoding: UTF16BE, name: "UTF-16", dummy: true}
	UTF32 Encoding = &derived{Encoding: UTF32BE, name: "UTF-32", dummy: true}
)

// builtins lists the encodings every Registry starts with, in index order.
var builtins = []Encoding{
	ASCII8BIT,
	UTF8,
	USASCII,
	UTF16BE,
	UTF16LE,
	UTF32BE,
	UTF32LE,
	ISO8859_1,
	ISO8859_15,
	Windows1252,
	KOI8R,
	EUCJP,
	UTF7,
	UTF16,
	UTF32,
}

// builtinAliases maps alternative names to built-in encoding names.
var builtinAliases = map[string]string{
	"BINARY":         "ASCII-8BIT",
	"ASCII":          "US-ASCII",
	"ANSI_X3.4-1968": "US-ASCII",
	"646":            "US-ASCII",
	"CP65001":        "UTF-8",
	"UTF8":           "UTF-8",
	"UCS-2BE":        "UTF-16BE",
	"UCS-4LE":        "UTF-32LE",
	"ISO8859-1":      "ISO-8859-1",
	"ISO8859-15":     "ISO-8859-15",
	"CP1252":         "Windows-1252",
	"CP878":          "KOI8-R",
	"eucJP":          "EUC-JP",
	"CP65000":        "UTF-7",
}

func init() {
	for i, e := range builtins {
		e.(indexed).setIndex(i)
	}
}
