package middleware

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

const xmlRootElement = "response"

// NegotiateXML re-encodes JSON responses as XML when the client asks for
// application/xml. Status codes and the envelope shape are preserved.
func NegotiateXML() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !wantsXML(r) {
				next.ServeHTTP(w, r)
				return
			}

			buf := &bufferedWriter{header: http.Header{}}
			next.ServeHTTP(buf, r)

			for k, values := range buf.header {
				for _, v := range values {
					w.Header().Add(k, v)
				}
			}
			status := buf.status
			if status == 0 {
				status = http.StatusOK
			}

			body := buf.body.Bytes()
			if !strings.HasPrefix(buf.header.Get("Content-Type"), "application/json") || len(bytes.TrimSpace(body)) == 0 {
				w.WriteHeader(status)
				_, _ = w.Write(body)
				return
			}

			encoded, err := jsonToXML(body)
			if err != nil {
				w.WriteHeader(status)
				_, _ = w.Write(body)
				return
			}
			w.Header().Set("Content-Type", "application/xml; charset=utf-8")
			w.Header().Del("Content-Length")
			w.WriteHeader(status)
			_, _ = w.Write(encoded)
		})
	}
}

func wantsXML(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Accept")), "application/xml")
}

type bufferedWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func (b *bufferedWriter) Header() http.Header { return b.header }

func (b *bufferedWriter) WriteHeader(code int) {
	if b.status == 0 {
		b.status = code
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func jsonToXML(payload []byte) ([]byte, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.WriteString(xml.Header)
	enc := xml.NewEncoder(&out)
	if err := encodeXMLValue(enc, xmlRootElement, value); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// encodeXMLValue writes objects as child elements in key order, arrays as
// repeated <item> elements and primitives as text.
func encodeXMLValue(enc *xml.Encoder, name string, value any) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	switch v := value.(type) {
	case nil:
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := encodeXMLValue(enc, k, v[k]); err != nil {
				return err
			}
		}
	case []any:
		for _, item := range v {
			if err := encodeXMLValue(enc, "item", item); err != nil {
				return err
			}
		}
	case string:
		if err := enc.EncodeToken(xml.CharData(v)); err != nil {
			return err
		}
	case json.Number:
		if err := enc.EncodeToken(xml.CharData(v.String())); err != nil {
			return err
		}
	case bool:
		if err := enc.EncodeToken(xml.CharData(strconv.FormatBool(v))); err != nil {
			return err
		}
	default:
		if err := enc.EncodeToken(xml.CharData(fmt.Sprint(v))); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
