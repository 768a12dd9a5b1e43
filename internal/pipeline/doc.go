// Package pipeline implements the Markdown-to-card pipeline.
//
// The stages run in this order:
//   - frontmatter extraction and flat key/value parsing
//   - card segmentation on separator lines
//   - content transformation (image references, trailing tags, Markdown via Goldmark)
//   - card presentation model (cover plus numbered content cards)
//   - document assembly from HTML templates with CSS injection
//
// Parsing stages never fail: malformed input degrades to empty metadata or
// fewer cards. PNG rasterization is handled separately by the root md2card
// package using headless Chrome (go-rod).
package pipeline
