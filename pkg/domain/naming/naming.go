// naming conventions for k8s objects and files under the storage root.
package naming

import "path"

// name of the k8s Job filtering one run's chromosome.
func Worker(runId string) string {
	return "filter-run-" + runId
}

// per-chromosome VCF shard of a cohort, relative to the storage root.
func VCFShard(vcfRoot string, chromosome string) string {
	return path.Join(vcfRoot, chromosome+".vcf.gz")
}

// sample manifest of a cohort, relative to the storage root.
func SampleManifest(vcfRoot string) string {
	return path.Join(vcfRoot, "samples.tsv")
}

// directory holding all cohort files, relative to the storage root.
func CohortsRoot() string {
	return "cohorts"
}

// directory holding all files of one cohort.
func CohortDir(cohortId string) string {
	return path.Join(CohortsRoot(), cohortId)
}

// chromosome CSV written by one run, relative to the storage root.
func ChromosomeCSV(cohortId string, chromosome string) string {
	return path.Join(CohortDir(cohortId), "variants", chromosome+".csv")
}

// directory holding all chromosome CSVs of a cohort.
func ChromosomeCSVDir(cohortId string) string {
	return path.Join(CohortDir(cohortId), "variants")
}

// merged feature table of a cohort, relative to the storage root.
func FeatureTableCSV(cohortId string) string {
	return path.Join(CohortDir(cohortId), "features.csv")
}
