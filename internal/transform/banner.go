package transform

import (
	"context"
	"fmt"
	"strings"
)

// Banner prepends a preserved comment to the stylesheet. The "/*!" form
// survives minification.
type Banner struct{}

// NewBanner creates the banner transform.
func NewBanner() *Banner { return &Banner{} }

// Name returns "banner".
func (*Banner) Name() string { return "banner" }

// Apply prepends options.text as a comment.
func (*Banner) Apply(_ context.Context, css string, args Args) (string, error) {
	text, err := stringOption(args.Options, "text", "")
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("option text is required")
	}
	text = strings.ReplaceAll(text, "*/", "* /")
	return "/*! " + text + " */\n" + css, nil
}
