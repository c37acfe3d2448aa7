package helpers

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/a-h/templ"
)

// Views is a parsed set of html/template files exposed as templ components.
type Views struct {
	set *template.Template
}

// ParseViews parses every *.html file in fsys with FuncMap. It panics on parse
// errors, so it belongs in package-level vars.
func ParseViews(name string, fsys fs.FS) *Views {
	return &Views{set: template.Must(template.New(name).Funcs(FuncMap()).ParseFS(fsys, "*.html"))}
}

// Component renders the named template with data.
func (v *Views) Component(name string, data any) templ.Component {
	t := v.set.Lookup(name)
	if t == nil {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			return fmt.Errorf("views: template %q not defined in %s", name, v.set.Name())
		})
	}
	return templ.FromGoHTML(t, data)
}

// Option is a value/label pair for select inputs.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Field is a labelled form input with its current value and error.
type Field struct {
	Label    string
	Type     string
	Name     string
	Value    string
	Step     string
	Error    string
	ReadOnly bool
}

// NewField looks up name in values and errs.
func NewField(label, inputType, name string, values, errs map[string]string) Field {
	return Field{Label: label, Type: inputType, Name: name, Value: values[name], Error: errs[name]}
}

// NewDecimalField is a numeric input accepting cents.
func NewDecimalField(label, name string, values, errs map[string]string) Field {
	f := NewField(label, "number", name, values, errs)
	f.Step = "0.01"
	return f
}
