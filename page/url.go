package page

import (
	"io"

	"github.com/pkg/errors"
	"github.com/valyala/fasttemplate"
	"gitlab.com/osfpages/pagek"
)

// RenderURL fills {name} placeholders in tmpl from params
func RenderURL(tmpl string, params map[string]string) (string, error) {
	t, err := fasttemplate.NewTemplate(tmpl, "{", "}")
	if err != nil {
		return "", errors.Wrapf(err, "parsing url template %q", tmpl)
	}
	return t.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		v, ok := params[tag]
		if !ok || v == "" {
			return 0, errors.Wrapf(pagek.ErrMissingURLParam, "%q in %s", tag, tmpl)
		}
		return w.Write([]byte(v))
	})
}
