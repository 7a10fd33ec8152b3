package siwe

import (
	"strings"
)

// lineCursor walks the lines of a message forward only.
type lineCursor struct {
	lines []string
	pos   int
}

func (c *lineCursor) peek() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	return c.lines[c.pos], true
}

func (c *lineCursor) next() (string, bool) {
	line, ok := c.peek()
	if ok {
		c.pos++
	}
	return line, ok
}

// tagged consumes the next line, which must start with tag, and returns the
// rest of it verbatim.
func (c *lineCursor) tagged(tag string) (string, error) {
	line, ok := c.next()
	if !ok {
		return "", errMissingTag(strings.TrimSuffix(tag, ": "))
	}
	value, found := strings.CutPrefix(line, tag)
	if !found {
		return "", errMissingTag(strings.TrimSuffix(tag, ": "))
	}
	return value, nil
}

// ParseMessage decodes raw into a Message. It performs no semantic validation
// of the values; the address, timestamps and nonce are checked by Verifier.
func ParseMessage(raw string) (*Message, error) {
	c := &lineCursor{lines: strings.Split(raw, "\n")}

	header, _ := c.next()
	domain, found := strings.CutSuffix(header, headerSuffix)
	if !found {
		return nil, ErrInvalidHeader
	}

	address, ok := c.next()
	if !ok {
		return nil, ErrMissingAddress
	}

	if _, ok := c.next(); !ok {
		return nil, ErrMissingSeparator
	}

	msg := &Message{
		Domain:  domain,
		Address: address,
	}

	// a non-empty line here is the statement and is followed by its own blank
	// line; an empty one is the separator itself
	if line, ok := c.next(); ok && line != "" {
		msg.Statement = line
		c.next()
	}

	var err error
	if msg.URI, err = c.tagged(tagURI); err != nil {
		return nil, err
	}
	if msg.Version, err = c.tagged(tagVersion); err != nil {
		return nil, err
	}
	if msg.ChainID, err = c.tagged(tagChainID); err != nil {
		return nil, err
	}
	if msg.Nonce, err = c.tagged(tagNonce); err != nil {
		return nil, err
	}
	if msg.IssuedAt, err = c.tagged(tagIssuedAt); err != nil {
		return nil, err
	}

	optional := []struct {
		tag   string
		field *string
	}{
		{tagExpirationTime, &msg.ExpirationTime},
		{tagNotBefore, &msg.NotBefore},
		{tagRequestID, &msg.RequestID},
	}
	seen := make(map[string]bool, len(optional))

	for line, ok := c.next(); ok; line, ok = c.next() {
		if line == "" {
			continue
		}

		matched := false
		for _, o := range optional {
			value, found := strings.CutPrefix(line, o.tag)
			if !found {
				continue
			}
			if seen[o.tag] {
				return nil, errDuplicateTag(strings.TrimSuffix(o.tag, ": "))
			}
			seen[o.tag] = true
			*o.field = value
			matched = true
			break
		}

		if !matched {
			return nil, ErrExtraLines
		}
	}

	return msg, nil
}
