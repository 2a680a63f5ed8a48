package render

import (
	"fmt"
	"html"
)

// DocumentShell wraps server-rendered markup in a minimal document:
// declaration, head with the styling CDN reference, body with the markup.
func DocumentShell(markup, stylingCDN, mountID string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<script src="%s"></script>
</head>
<body>
<div id="%s">%s</div>
</body>
</html>`, html.EscapeString(stylingCDN), html.EscapeString(mountID), markup)
}

// BrowserShell is the companion document for a browser module: it carries
// the mount element and a module script reference; the module itself is
// served separately.
func BrowserShell(scriptSrc, stylingCDN, mountID string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<script src="%s"></script>
</head>
<body>
<div id="%s"></div>
<script type="module" src="%s"></script>
</body>
</html>`, html.EscapeString(stylingCDN), html.EscapeString(mountID), html.EscapeString(scriptSrc))
}
