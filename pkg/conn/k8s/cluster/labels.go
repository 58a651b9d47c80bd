package cluster

import (
	"strings"
)

// k8s label selector in the equality based form.
//
// see: https://kubernetes.io/docs/concepts/overview/working-with-objects/labels/#equality-based-requirement
type LabelSelector map[string]string

// convert to string value in form of query string.
func (ls LabelSelector) QueryString() string {
	if len(ls) == 0 {
		return ""
	}

	b := &strings.Builder{}
	for k, v := range ls {
		b.WriteString(k)
		b.WriteRune('=')
		b.WriteString(v)
		b.WriteRune(',')
	}
	s := b.String()
	return s[:len(s)-1] // trim rightmost comma
}
