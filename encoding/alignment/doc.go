// Package alignment reads alignment records from SAM text and BAM files and
// reduces them to methyl.Read values: a 0-based alignment start and the read
// bases.
//
// SAM text is parsed leniently. Header lines (starting with '@') are skipped.
// A data line with fewer than 10 tab-separated fields, or whose POS field is
// not an integer, is reported as a *ParseError at debug level, counted, and
// skipped; iteration continues with the next line. Only I/O errors stop the
// iteration.
//
// BAM files are decoded with github.com/grailbio/hts/bam. Their positions are
// already 0-based.
package alignment
