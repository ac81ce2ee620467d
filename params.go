package main

import (
	"fmt"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/valyala/fasthttp"
)

// splitPathQuery splits a "$path?$query" string on the first '?'. A
// missing '?' means an empty query.
func splitPathQuery(s string) (string, string) {
	qIdx := strings.IndexRune(s, '?')
	if qIdx == -1 {
		return s, ""
	}
	return s[:qIdx], s[qIdx+1:]
}

// parseParamSpec splits a shell quoted list of k=v tokens and sets each
// one into args, later tokens win.
func parseParamSpec(args *fasthttp.Args, spec string) error {
	tokens, err := shlex.Split(spec, true)
	if err != nil {
		return fmt.Errorf("unable to perform arg splitting on param spec: %s", err)
	}
	for _, tok := range tokens {
		eq := strings.IndexByte(tok, '=')
		if eq < 1 {
			return fmt.Errorf("expected k=v, got %q", tok)
		}
		args.Set(tok[:eq], tok[eq+1:])
	}
	return nil
}

// argsToParams copies parsed query args into the map handed to the
// signer. Repeated keys keep the last value.
func argsToParams(args *fasthttp.Args) map[string]string {
	params := make(map[string]string, args.Len())
	args.VisitAll(func(k, v []byte) {
		params[string(k)] = string(v)
	})
	return params
}
