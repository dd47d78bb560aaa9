package cdrstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"glossaudio/internal/cdr"
	"glossaudio/internal/services"
)

// validateDocument applies the schema and link checks a CDR save performs
// for the document types the import writes.
func validateDocument(ctx context.Context, q querier, docType string, xml, blob []byte) error {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(xml); err != nil {
		return fmt.Errorf("%w: malformed XML: %v", services.ErrSaveRejected, err)
	}
	root := tree.Root()
	if root == nil {
		return fmt.Errorf("%w: empty document", services.ErrSaveRejected)
	}
	if root.Tag != docType {
		return fmt.Errorf("%w: root element %q does not match document type %q", services.ErrSaveRejected, root.Tag, docType)
	}

	switch docType {
	case cdr.DocTypeMedia:
		if title := root.SelectElement("MediaTitle"); title == nil || strings.TrimSpace(title.Text()) == "" {
			return fmt.Errorf("%w: Media document requires MediaTitle", services.ErrSaveRejected)
		}
		if len(blob) == 0 {
			return fmt.Errorf("%w: Media document requires a binary payload", services.ErrSaveRejected)
		}
		for _, el := range root.FindElements("./ProposedUse/Glossary") {
			if err := checkRef(ctx, q, el, cdr.DocTypeGlossaryTermName); err != nil {
				return err
			}
		}
	case cdr.DocTypeGlossaryTermName:
		for _, tag := range []string{"TermName", "TranslatedName"} {
			for _, block := range root.SelectElements(tag) {
				if names := block.SelectElement("TermNameString"); names == nil || strings.TrimSpace(names.Text()) == "" {
					return fmt.Errorf("%w: %s requires TermNameString", services.ErrSaveRejected, tag)
				}
				for _, link := range block.FindElements("./MediaLink/MediaID") {
					if err := checkRef(ctx, q, link, cdr.DocTypeMedia); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func checkRef(ctx context.Context, q querier, el *etree.Element, wantType string) error {
	ref := el.SelectAttrValue("cdr:ref", "")
	id, err := cdr.ParseID(ref)
	if err != nil {
		return fmt.Errorf("%w: %s has invalid cdr:ref %q", services.ErrSaveRejected, el.Tag, ref)
	}
	row, err := loadDoc(ctx, q, id)
	if err != nil {
		return fmt.Errorf("%w: %s links to missing %s", services.ErrSaveRejected, el.Tag, cdr.FormatID(id))
	}
	if row.docType != wantType {
		return fmt.Errorf("%w: %s links to %s of type %s, want %s",
			services.ErrSaveRejected, el.Tag, cdr.FormatID(id), row.docType, wantType)
	}
	return nil
}
