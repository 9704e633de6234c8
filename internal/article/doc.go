// Package article defines the front matter schema of a blog article and
// loads it from content files.
//
// Every article carries seven header fields: title, date, slug, description,
// hero, tags and layout. Headers are decoded generically first and then
// type-checked field by field by [Decode], so a mistyped value (for example
// a plain string where tags expects a list) is reported as an issue on that
// field instead of aborting the whole parse.
//
// When slug is absent it is derived from the file name, or from the parent
// directory for index files, and [Article.SlugDerived] is set.
package article
