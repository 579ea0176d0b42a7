// Package api は、HTTPインターフェースのOpenAPIドキュメントを埋め込みで提供します。
package api

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var spec []byte

// Spec は埋め込まれたOpenAPIドキュメントの生データを返す
func Spec() []byte {
	return spec
}

// Load は埋め込まれたOpenAPIドキュメントを読み込み、検証する
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("OpenAPIドキュメントの読み込みに失敗: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("OpenAPIドキュメントの検証に失敗: %w", err)
	}

	return doc, nil
}
