// Package storecrawl provides a CLI-based storefront category crawler.
// It discovers product categories on a store's landing page and walks each
// category's client-side rendered listing through its pagination control,
// collecting item links page by page.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, chromedp/, goquery/, colly/).
package storecrawl
