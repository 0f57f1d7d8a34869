package artifact

// WithColumns exposes withColumns to the external test package.
var WithColumns = withColumns
