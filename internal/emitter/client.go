package emitter

import (
	"fmt"
	"strings"

	"github.com/loomlang/loomc/internal/split"
)

// runtimeSymbols lists the names pulled out of the `loom-runtime` module
// into every emitted bundle. A WebSocketClient is only destructured when
// the splitter detected a `use ".../websocket"`-style import, keeping the
// import list minimal for programs that don't need it.
func runtimeSymbols(usesWebSocket bool) string {
	names := []string{"signal", "computed", "effect", "batch", "h", "onMount", "onUnmount", "onUpdate"}
	if usesWebSocket {
		names = append(names, "WebSocketClient")
	}
	return strings.Join(names, ", ")
}

// EmitClient assembles the client bundle: a UMD-style IIFE exporting a
// `mount(rootElement)` entry point, following the module-wrapper shape the
// teacher's own CLI-facing packages use for standalone distributables.
// entryComponent names the component mounted at the document root; pass ""
// to omit the default mount call (e.g. a program with no top-level
// component, left for hand-written bootstrap code).
func (em *Emitter) EmitClient(res *split.Result, entryComponent, buildID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// Generated by loomc. Build %s. Do not edit by hand.\n", buildID)
	b.WriteString("(function (global, factory) {\n")
	b.WriteString("  typeof module === 'object' && module.exports ? module.exports = factory()\n")
	b.WriteString("    : typeof define === 'function' && define.amd ? define(factory)\n")
	b.WriteString("    : (global.LoomApp = factory());\n")
	b.WriteString("}(typeof self !== 'undefined' ? self : this, function () {\n")
	b.WriteString("  'use strict';\n")
	fmt.Fprintf(&b, "  const { %s } = LoomRuntime;\n\n", runtimeSymbols(res.UsesWebSocket))
	b.WriteString("  function __shallowEqual(a, b) {\n")
	b.WriteString("    const ak = Object.keys(a), bk = Object.keys(b);\n")
	b.WriteString("    if (ak.length !== bk.length) return false;\n")
	b.WriteString("    return ak.every((k) => a[k] === b[k]);\n")
	b.WriteString("  }\n\n")
	b.WriteString("  function __tryUnwrap(result) {\n")
	b.WriteString("    if (result && result.tag === 'Err') {\n")
	b.WriteString("      const e = new Error('propagated error');\n")
	b.WriteString("      e.__isPropagate = true;\n")
	b.WriteString("      e.value = result;\n")
	b.WriteString("      throw e;\n")
	b.WriteString("    }\n")
	b.WriteString("    return result && result.tag === 'Ok' ? result.values[0] : result;\n")
	b.WriteString("  }\n\n")

	for _, d := range res.SharedDecls {
		b.WriteString(em.emitDecl(d))
		b.WriteString("\n\n")
	}
	for _, d := range res.ClientDecls {
		b.WriteString(em.emitDecl(d))
		b.WriteString("\n\n")
	}
	for _, stub := range res.Stubs {
		b.WriteString(em.emitRPCStub(stub))
		b.WriteString("\n\n")
	}

	b.WriteString("  function mount(rootElement) {\n")
	if entryComponent != "" {
		fmt.Fprintf(&b, "    rootElement.appendChild(h(%s, {}, []));\n", entryComponent)
	}
	b.WriteString("  }\n\n")
	b.WriteString("  return { mount };\n")
	b.WriteString("}));\n")
	return b.String()
}

// emitRPCStub emits the client-side call-site replacement for an
// `@server` function reachable from client code: a fetch POST to
// `/rpc/<name>` carrying `{"args":[...]}`, unwrapping the
// `{"ok":true,"value":...}` / `{"ok":false,"error":{...}}` response envelope.
func (em *Emitter) emitRPCStub(stub split.RPCStub) string {
	params := make([]string, len(stub.Params))
	for i, p := range stub.Params {
		params[i] = p.Name
	}
	return fmt.Sprintf(
		"async function %s(%s) {\n"+
			"  const __res = await fetch(%q, {\n"+
			"    method: 'POST',\n"+
			"    headers: { 'Content-Type': 'application/json' },\n"+
			"    body: JSON.stringify({ args: [%s] }),\n"+
			"  });\n"+
			"  const __data = await __res.json();\n"+
			"  if (!__data.ok) {\n"+
			"    const __err = new Error(__data.error.message);\n"+
			"    __err.code = __data.error.code;\n"+
			"    throw __err;\n"+
			"  }\n"+
			"  return __data.value;\n"+
			"}",
		stub.Name, strings.Join(params, ", "),
		"/rpc/"+stub.Name,
		strings.Join(params, ", "),
	)
}
