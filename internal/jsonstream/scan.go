package jsonstream

import (
	"encoding/json"
	"fmt"
	"io"
)

// Handler is invoked once per record, in the order records appear inside
// the array. record has already been reordered into canonical member
// order (id first, remainder lexicographic).
type Handler func(index int, record Value) error

// ScanPage streams a page file's top-level object, locates the array
// stored under recordsKey, and delivers each element to handler as a
// fully-parsed Value — without ever holding more than one record's tree
// in memory at once. Trailing commas inside objects/arrays are tolerated
// on input. A malformed document or a handler error aborts the scan.
func ScanPage(r io.Reader, recordsKey string, handler Handler) error {
	dec := json.NewDecoder(stripTrailingCommas(r))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("jsonstream: top-level value: %w", err)
	}

	found := false
	index := 0
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return fmt.Errorf("jsonstream: top-level key: %w", err)
		}

		if key != recordsKey {
			if _, err := readValue(dec); err != nil {
				return fmt.Errorf("jsonstream: skip field %q: %w", key, err)
			}
			continue
		}
		found = true

		if err := expectDelim(dec, '['); err != nil {
			return fmt.Errorf("jsonstream: field %q: %w", recordsKey, err)
		}
		for dec.More() {
			rec, err := readValue(dec)
			if err != nil {
				return fmt.Errorf("jsonstream: record %d: %w", index, err)
			}
			if rec.Kind != KindObject {
				return fmt.Errorf("jsonstream: record %d is not a JSON object", index)
			}
			if err := handler(index, rec.Canonical()); err != nil {
				return err
			}
			index++
		}
		if _, err := dec.Token(); err != nil { // closing ']'
			return fmt.Errorf("jsonstream: field %q: %w", recordsKey, err)
		}
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return fmt.Errorf("jsonstream: top-level value: %w", err)
	}

	if !found {
		return fmt.Errorf("jsonstream: top-level object has no %q array", recordsKey)
	}
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	got, ok := tok.(json.Delim)
	if !ok || got != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %T", tok)
	}
	return key, nil
}

func readValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return valueFromToken(dec, tok)
}

func valueFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readObject(dec)
		case '[':
			return readArray(dec)
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case json.Number:
		return Value{Kind: KindNumber, Num: string(t)}, nil
	case string:
		return Value{Kind: KindString, Str: t}, nil
	case bool:
		return Value{Kind: KindBool, Bool: t}, nil
	case nil:
		return Value{Kind: KindNull}, nil
	default:
		return Value{}, fmt.Errorf("unexpected token %T", tok)
	}
}

func readObject(dec *json.Decoder) (Value, error) {
	obj := Value{Kind: KindObject}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return Value{}, err
		}
		val, err := readValue(dec)
		if err != nil {
			return Value{}, err
		}
		obj.Obj = append(obj.Obj, Member{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return Value{}, err
	}
	return obj, nil
}

func readArray(dec *json.Decoder) (Value, error) {
	arr := Value{Kind: KindArray}
	for dec.More() {
		val, err := readValue(dec)
		if err != nil {
			return Value{}, err
		}
		arr.Arr = append(arr.Arr, val)
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return Value{}, err
	}
	return arr, nil
}
