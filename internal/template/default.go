package template

// DefaultTemplate is the embedded default export template.
// It uses {{variable}} placeholders for dynamic content injection.
const DefaultTemplate = `{{summary}}

## Activity
{{history}}

---
Exported {{exported}} by {{user}} | {{status}} | {{progress}}
`
