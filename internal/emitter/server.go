package emitter

import (
	"fmt"
	"strings"

	"github.com/loomlang/loomc/internal/split"
)

// EmitServer assembles the server bundle: a plain Node-style CommonJS
// module that registers one HTTP handler per RPC stub under `/rpc/<name>`,
// matching the request/response envelope the design defines, and
// bootstraps a WebSocket upgrade path when the program uses one.
func (em *Emitter) EmitServer(res *split.Result, buildID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// Generated by loomc. Build %s. Do not edit by hand.\n", buildID)
	b.WriteString("'use strict';\n")
	b.WriteString("const http = require('http');\n")
	if res.UsesWebSocket {
		b.WriteString("const { WebSocketServer } = require('ws');\n")
	}
	b.WriteString("const { signal, computed, effect, batch } = require('loom-runtime');\n\n")

	for _, d := range res.SharedDecls {
		b.WriteString(em.emitDecl(d))
		b.WriteString("\n\n")
	}
	for _, d := range res.ServerDecls {
		b.WriteString(em.emitDecl(d))
		b.WriteString("\n\n")
	}

	b.WriteString("const __rpcHandlers = {\n")
	for _, stub := range res.Stubs {
		fmt.Fprintf(&b, "  %q: %s,\n", stub.Name, stub.Fn.Name)
	}
	b.WriteString("};\n\n")

	b.WriteString("function __readBody(req) {\n")
	b.WriteString("  return new Promise((resolve, reject) => {\n")
	b.WriteString("    let chunks = '';\n")
	b.WriteString("    req.on('data', (c) => { chunks += c; });\n")
	b.WriteString("    req.on('end', () => resolve(chunks));\n")
	b.WriteString("    req.on('error', reject);\n")
	b.WriteString("  });\n")
	b.WriteString("}\n\n")

	b.WriteString("async function __handleRPC(name, req, res) {\n")
	b.WriteString("  const handler = __rpcHandlers[name];\n")
	b.WriteString("  res.setHeader('Content-Type', 'application/json');\n")
	b.WriteString("  if (!handler) {\n")
	b.WriteString("    res.statusCode = 404;\n")
	b.WriteString("    res.end(JSON.stringify({ ok: false, error: { code: 'not_found', message: 'unknown RPC ' + name } }));\n")
	b.WriteString("    return;\n")
	b.WriteString("  }\n")
	b.WriteString("  try {\n")
	b.WriteString("    const body = JSON.parse((await __readBody(req)) || '{}');\n")
	b.WriteString("    const value = await handler(...(body.args || []));\n")
	b.WriteString("    res.end(JSON.stringify({ ok: true, value }));\n")
	b.WriteString("  } catch (err) {\n")
	b.WriteString("    res.statusCode = 500;\n")
	b.WriteString("    res.end(JSON.stringify({ ok: false, error: { code: 'internal_error', message: String(err && err.message || err) } }));\n")
	b.WriteString("  }\n")
	b.WriteString("}\n\n")

	b.WriteString("const server = http.createServer((req, res) => {\n")
	b.WriteString("  if (req.method === 'POST' && req.url.startsWith('/rpc/')) {\n")
	b.WriteString("    __handleRPC(req.url.slice('/rpc/'.length), req, res);\n")
	b.WriteString("    return;\n")
	b.WriteString("  }\n")
	b.WriteString("  res.statusCode = 404;\n")
	b.WriteString("  res.end('not found');\n")
	b.WriteString("});\n\n")

	if res.UsesWebSocket {
		b.WriteString("const __wss = new WebSocketServer({ server });\n")
		b.WriteString("__wss.on('connection', (socket) => {\n")
		b.WriteString("  socket.on('message', (data) => {\n")
		b.WriteString("    // Application-level message routing is left to user code\n")
		b.WriteString("    // registered against __wss; loomc only wires the upgrade path.\n")
		b.WriteString("  });\n")
		b.WriteString("});\n")
		b.WriteString("module.exports.wss = __wss;\n\n")
	}

	b.WriteString("server.listen(process.env.PORT || 3000);\n")
	b.WriteString("module.exports.server = server;\n")
	return b.String()
}
