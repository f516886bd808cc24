package emitter

import "fmt"

// EmitHTML generates the static entry point: a minimal document linking
// the generated stylesheet and client bundle, stamping buildID (a
// google/uuid value minted by the driver per compile) into a meta tag so a
// dev harness or CDN can cache-bust on redeploy.
func EmitHTML(title, buildID string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta name="loom-build-id" content="%s">
  <title>%s</title>
  <link rel="stylesheet" href="styles.css">
</head>
<body>
  <div id="root"></div>
  <script src="client.js"></script>
  <script>
    LoomApp.mount(document.getElementById('root'));
  </script>
</body>
</html>
`, buildID, title)
}
