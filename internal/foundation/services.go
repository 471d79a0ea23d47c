package foundation

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/swrelease/internal/utils"
)

const (
	xmlFileExtension    = ".xml"
	serviceElementName  = "service"
	servicesElementName = "services"
	serviceIDAttribute  = "id"
	serviceIndentation  = "    "
)

var errNoServicesElement = errors.New("no <services> element")

// serviceDefinition is one <service> element exactly as written in its source file.
type serviceDefinition struct {
	id  string
	raw string
}

// mergeServices appends the companion's service definitions to the target's container
// file with the namespace moved. The target file is edited textually so its own
// formatting survives; definitions whose rewritten id already exists are skipped.
// A missing file on either side skips the merge with a warning.
func mergeServices(companionPath string, targetPath string, oldNamespace string, newNamespace string, logger *zap.Logger) (int, error) {
	if !utils.PathExists(companionPath) {
		logger.Warn("companion services file not found, skipping service merge", zap.String("path", companionPath))
		return 0, nil
	}
	if !utils.PathExists(targetPath) {
		logger.Warn("target services file not found, skipping service merge", zap.String("path", targetPath))
		return 0, nil
	}
	companionContent, readError := os.ReadFile(companionPath)
	if readError != nil {
		return 0, &Error{Stage: StageServices, Path: companionPath, Err: readError}
	}
	targetContent, readError := os.ReadFile(targetPath)
	if readError != nil {
		return 0, &Error{Stage: StageServices, Path: targetPath, Err: readError}
	}

	definitions, _, _, scanError := scanServices(companionContent)
	if scanError != nil {
		return 0, &Error{Stage: StageServices, Path: companionPath, Err: scanError}
	}
	_, existingIDs, closingOffset, scanError := scanServices(targetContent)
	if scanError != nil {
		return 0, &Error{Stage: StageServices, Path: targetPath, Err: scanError}
	}
	if closingOffset < 0 {
		return 0, &Error{Stage: StageServices, Path: targetPath, Err: errNoServicesElement}
	}

	lineIndentation := indentationBefore(targetContent, closingOffset)
	var insertion strings.Builder
	merged := 0
	for _, definition := range definitions {
		if definition.id == "" {
			continue
		}
		newID := strings.Replace(definition.id, oldNamespace, newNamespace, 1)
		if existingIDs[newID] {
			logger.Debug("service already defined", zap.String("id", newID))
			continue
		}
		existingIDs[newID] = true
		insertion.WriteString(serviceIndentation)
		insertion.WriteString(strings.ReplaceAll(definition.raw, oldNamespace, newNamespace))
		insertion.WriteString("\n")
		insertion.WriteString(lineIndentation)
		merged++
	}
	if merged == 0 {
		return 0, nil
	}

	var output bytes.Buffer
	output.Write(targetContent[:closingOffset])
	output.WriteString(insertion.String())
	output.Write(targetContent[closingOffset:])
	fileInfo, statError := os.Stat(targetPath)
	if statError != nil {
		return 0, &Error{Stage: StageServices, Path: targetPath, Err: statError}
	}
	if writeError := os.WriteFile(targetPath, output.Bytes(), fileInfo.Mode().Perm()); writeError != nil {
		return 0, &Error{Stage: StageServices, Path: targetPath, Err: writeError}
	}
	logger.Debug("merged service definitions", zap.Int("count", merged), zap.String("path", targetPath))
	return merged, nil
}

// scanServices returns the top-level <service> elements of a container file, the set
// of their ids and the byte offset of the last </services> tag, or -1 without one.
func scanServices(content []byte) ([]serviceDefinition, map[string]bool, int, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	var definitions []serviceDefinition
	identifiers := map[string]bool{}
	closingOffset := -1

	serviceDepth := 0
	serviceStart := int64(0)
	currentID := ""
	for {
		tokenStart := decoder.InputOffset()
		token, tokenError := decoder.Token()
		if errors.Is(tokenError, io.EOF) {
			break
		}
		if tokenError != nil {
			return nil, nil, -1, tokenError
		}
		switch element := token.(type) {
		case xml.StartElement:
			if element.Name.Local == serviceElementName {
				if serviceDepth == 0 {
					serviceStart = tokenStart
					currentID = attributeValue(element, serviceIDAttribute)
					identifiers[currentID] = true
				}
				serviceDepth++
			}
		case xml.EndElement:
			switch element.Name.Local {
			case serviceElementName:
				serviceDepth--
				if serviceDepth == 0 {
					definitions = append(definitions, serviceDefinition{
						id:  currentID,
						raw: string(content[serviceStart:decoder.InputOffset()]),
					})
				}
			case servicesElementName:
				closingOffset = int(tokenStart)
			}
		}
	}
	return definitions, identifiers, closingOffset, nil
}

func attributeValue(element xml.StartElement, name string) string {
	for _, attribute := range element.Attr {
		if attribute.Name.Local == name {
			return attribute.Value
		}
	}
	return ""
}

// indentationBefore returns the whitespace between the last line break before offset and offset.
func indentationBefore(content []byte, offset int) string {
	lineStart := bytes.LastIndexByte(content[:offset], '\n') + 1
	prefix := string(content[lineStart:offset])
	if strings.TrimSpace(prefix) != "" {
		return ""
	}
	return prefix
}
