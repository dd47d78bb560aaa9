// Package glossary links glossary term name documents to the Media documents
// holding their pronunciations.
//
// A name block (TermName for English, TranslatedName for Spanish) is treated
// as an ordered list of typed children so the insertion rules can be written
// in terms of schema roles instead of raw element positions.
package glossary
