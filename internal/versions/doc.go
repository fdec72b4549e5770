// Package versions saves and restores named versions of the template
// directory.
//
// Each version is a flat copy of the template files under
// <versions>/<version>/. index.json maps every saved file name to the
// versions that contain it:
//
//	{
//	  "deployment.yaml.template": ["v1", "v2"],
//	  "values.yaml": ["v1", "v2"]
//	}
//
// Index updates hold an exclusive lock on <versions>/.locks/index.lock and
// replace index.json atomically, so concurrent saves never lose entries.
package versions
