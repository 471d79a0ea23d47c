// Package variant turns an isolated copy of a plugin into a renamed variant: the
// package metadata first, then the files themselves.
package variant

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tyemirov/swrelease/internal/composer"
	"github.com/tyemirov/swrelease/internal/identity"
)

// ErrNoVariantRequested is returned when neither prefix nor suffix is set.
var ErrNoVariantRequested = errors.New("variant requires a prefix or a suffix")

const (
	loadMetadataFormat = "variant metadata of %s: %w"
	saveMetadataFormat = "saving variant metadata of %s: %w"
)

// Transform derives the variant identity from the composer.json in rootPath, rewrites
// the metadata and then the tree. rootPath must be a disposable copy.
func Transform(rootPath string, spec identity.VariantSpec, logger *zap.Logger) (Result, identity.RewriteMap, error) {
	if !spec.Enabled() {
		return Result{}, identity.RewriteMap{}, ErrNoVariantRequested
	}
	document, loadError := composer.Load(rootPath)
	if loadError != nil {
		return Result{}, identity.RewriteMap{}, fmt.Errorf(loadMetadataFormat, rootPath, loadError)
	}
	originalIdentity, identityError := document.Identity()
	if identityError != nil {
		return Result{}, identity.RewriteMap{}, fmt.Errorf(loadMetadataFormat, rootPath, identityError)
	}

	rewriteMap := identity.Derive(originalIdentity, spec)
	logger.Info("building variant",
		zap.String("original", rewriteMap.OldName),
		zap.String("variant", rewriteMap.NewName),
		zap.String("namespace", rewriteMap.NewNamespace),
	)

	RewriteMetadata(document, rewriteMap, spec)
	if saveError := composer.Save(rootPath, document); saveError != nil {
		return Result{}, rewriteMap, fmt.Errorf(saveMetadataFormat, rootPath, saveError)
	}

	result, applyError := ApplyVariant(rootPath, originalIdentity.Name, rewriteMap, logger)
	if applyError != nil {
		return result, rewriteMap, applyError
	}
	return result, rewriteMap, nil
}
