package importer

import "context"

type contextKey string

const ctxKeyImport contextKey = "import"

// ImportInfo identifies the import a batch belongs to. Upserters may
// record it alongside the rows.
type ImportInfo struct {
	ID       string
	Filename string
}

// ContextWithImport attaches info to ctx.
func ContextWithImport(ctx context.Context, info ImportInfo) context.Context {
	return context.WithValue(ctx, ctxKeyImport, info)
}

// ImportFromContext returns the info attached by ContextWithImport.
func ImportFromContext(ctx context.Context) (ImportInfo, bool) {
	info, ok := ctx.Value(ctxKeyImport).(ImportInfo)
	return info, ok
}
