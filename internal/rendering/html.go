// Package rendering turns generated resume markdown into a print-ready PDF.
package rendering

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

// pageTemplate wraps the converted resume body in the print stylesheet.
const pageTemplate = `<html>
    <head>
        <style>
            body { font-family: 'Helvetica Neue', Arial, sans-serif; line-height: 1.5; margin: 40px; color: #333; }
            h1 { color: #111; margin-bottom: 5px; font-size: 24px; text-transform: uppercase; }
            h2 { color: #222; margin-top: 15px; margin-bottom: 10px; font-size: 18px; }
            h3 { color: #444; margin-top: 15px; margin-bottom: 5px; font-size: 16px; border-bottom: 1px solid #ccc; padding-bottom: 3px; }
            p { margin-bottom: 10px; }
            hr { border: 0; border-top: 1px solid #ddd; margin: 15px 0; }
            ul { padding-left: 20px; }
            li { margin-bottom: 6px; font-size: 14px; text-align: justify; }
        </style>
    </head>
    <body>
%s    </body>
</html>
`

// ToHTML converts resume markdown into a styled HTML page.
func ToHTML(markdown []byte) (string, error) {
	var body bytes.Buffer
	if err := goldmark.Convert(markdown, &body); err != nil {
		return "", &RenderError{
			Message: "failed to convert markdown",
			Cause:   err,
		}
	}

	return fmt.Sprintf(pageTemplate, body.String()), nil
}
