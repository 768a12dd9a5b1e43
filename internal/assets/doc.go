// Package assets provides the card stylesheet, HTML templates and the
// built-in sample deck.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - go:embed filesystem (built-in style and templates)
//	    ├── FilesystemLoader  - custom directory on disk
//	    └── AssetResolver     - custom first, embedded fallback
//
// AssetResolver is the loader used by the converter. Overriding a single
// asset in a custom directory keeps the built-in versions of the others.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # base card stylesheet
//	└── templates/
//	    └── {name}/
//	        ├── cover.html       # cover card
//	        ├── content.html     # numbered content card
//	        └── document.html    # page wrapping every card
//
// The sample deck (samples/default.md) is embedded only and cannot be
// overridden from a custom directory.
//
// # Security
//
// Asset names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
