package telepub

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	// condBlockRe matches the first well-formed conditional block:
	// {?cond} or {?!cond}, non-greedy content, and the nearest closing
	// tag of any name. Resolution is iterative, so nested blocks are
	// handled by repeated leftmost-innermost matching.
	condBlockRe = regexp.MustCompile(`(?s)\{\?(!?[^}]+)\}(.*?)\{/[^}]+\}`)

	// variableRe matches {expr} substitution tokens.
	variableRe = regexp.MustCompile(`\{([^{}]+)\}`)

	// newlineRunRe matches runs of three or more newlines.
	newlineRunRe = regexp.MustCompile(`\n{3,}`)
)

// processConditionals resolves {?cond}...{/cond} blocks. Each iteration
// replaces the first well-formed block with its content or nothing, so
// the number of {? openers shrinks monotonically and the loop
// terminates even on adversarial nesting. Unterminated openers are left
// in place as literal text.
func (e *Engine) processConditionals(template string, ctx *Context) string {
	result := template
	for {
		loc := condBlockRe.FindStringSubmatchIndex(result)
		if loc == nil {
			break
		}

		cond := strings.TrimSpace(result[loc[2]:loc[3]])
		content := result[loc[4]:loc[5]]

		negate := strings.HasPrefix(cond, TokenNegate)
		if negate {
			cond = cond[len(TokenNegate):]
		}

		value, _ := ctx.Get(cond)
		keep := isTruthy(value)
		if negate {
			keep = !keep
		}

		replacement := ""
		if keep {
			replacement = content
		}
		result = result[:loc[0]] + replacement + result[loc[1]:]
	}
	return result
}

// processLoops expands {#path}...{/path} blocks. The closing tag must
// repeat the path literally; an opener without its closer stays literal.
func (e *Engine) processLoops(template string, ctx *Context) string {
	var sb strings.Builder
	rest := template
	for {
		start := strings.Index(rest, TokenLoopOpen)
		if start < 0 {
			sb.WriteString(rest)
			break
		}

		nameEnd := strings.Index(rest[start:], TokenClose)
		if nameEnd < 0 {
			sb.WriteString(rest)
			break
		}
		nameEnd += start

		path := rest[start+len(TokenLoopOpen) : nameEnd]
		if path == "" {
			sb.WriteString(rest[:nameEnd+1])
			rest = rest[nameEnd+1:]
			continue
		}

		closer := TokenBlockClose + path + TokenClose
		bodyStart := nameEnd + 1
		closeIdx := strings.Index(rest[bodyStart:], closer)
		if closeIdx < 0 {
			// unterminated: keep the opener literal and move on
			sb.WriteString(rest[:bodyStart])
			rest = rest[bodyStart:]
			continue
		}

		body := rest[bodyStart : bodyStart+closeIdx]
		sb.WriteString(rest[:start])
		sb.WriteString(e.renderLoop(path, body, ctx))
		rest = rest[bodyStart+closeIdx+len(closer):]
	}
	return sb.String()
}

// renderLoop renders a loop body once per list item. Each iteration gets
// a derived scope with the reserved keys ".", "index", "first" and
// "last"; a mapping item contributes its own keys underneath those. The
// body goes through variable substitution only.
func (e *Engine) renderLoop(path, body string, ctx *Context) string {
	value, _ := ctx.Get(strings.TrimSpace(path))
	items, ok := asList(value)
	if !ok {
		e.logger.Debug("loop path did not resolve to a list",
			zap.String(MetaKeyPath, path))
		return ""
	}

	var sb strings.Builder
	for i, item := range items {
		overlay := make(map[string]any, 4)
		if m, isMap := item.(map[string]any); isMap {
			overlay = make(map[string]any, len(m)+4)
			for k, v := range m {
				overlay[k] = v
			}
		}
		overlay[LoopKeyItem] = item
		overlay[LoopKeyIndex] = i
		overlay[LoopKeyFirst] = i == 0
		overlay[LoopKeyLast] = i == len(items)-1

		sb.WriteString(e.processVariables(body, ctx.Child(overlay)))
	}
	return sb.String()
}

// processVariables substitutes {path}, {path|filter} and
// {path|filter:arg} tokens. Leftover block tags from malformed
// conditionals or loops are not expressions and stay literal.
func (e *Engine) processVariables(template string, ctx *Context) string {
	return variableRe.ReplaceAllStringFunc(template, func(token string) string {
		expr := token[1 : len(token)-1]
		if strings.HasPrefix(expr, "?") || strings.HasPrefix(expr, "#") || strings.HasPrefix(expr, "/") {
			return token
		}
		return e.resolveExpression(expr, ctx)
	})
}

// resolveExpression resolves one substitution expression to its text.
func (e *Engine) resolveExpression(expr string, ctx *Context) string {
	path := expr
	filterExpr := ""
	if idx := strings.Index(expr, TokenFilterSep); idx >= 0 {
		path = expr[:idx]
		filterExpr = expr[idx+1:]
		// anything past a second pipe is ignored
		if next := strings.Index(filterExpr, TokenFilterSep); next >= 0 {
			filterExpr = filterExpr[:next]
		}
	}

	value, _ := ctx.Get(strings.TrimSpace(path))

	if filterExpr = strings.TrimSpace(filterExpr); filterExpr != "" {
		name := filterExpr
		arg := ""
		if idx := strings.Index(filterExpr, TokenFilterArgSep); idx >= 0 {
			name = filterExpr[:idx]
			arg = unquoteArg(strings.TrimSpace(filterExpr[idx+1:]))
		}
		value = e.filters.Apply(name, value, arg)
	}

	if value == nil {
		return ""
	}
	return stringify(value)
}

// unquoteArg strips surrounding double quotes from a filter argument.
func unquoteArg(arg string) string {
	if len(arg) >= 2 && strings.HasPrefix(arg, `"`) && strings.HasSuffix(arg, `"`) {
		return arg[1 : len(arg)-1]
	}
	return arg
}
