// Package bibliographic fetches publication metadata from PubMed and
// CrossRef and formats publications for export.
//
// Lookups go through a Fetcher, keyed by protocol:
//   - "pubmed": a PubMed ID, fetched as MEDLINE text from NCBI efetch
//   - "doi": a DOI, fetched as JSON from the CrossRef works API
//
// Both clients cache responses and PubMed requests are rate limited to stay
// within the NCBI allowance.
package bibliographic
