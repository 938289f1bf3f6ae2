// Package routeconfig loads route tables from declarative documents.
//
// A document lists routes the way an application declares them, with view
// components referenced by name:
//
//	maxRedirects: 10
//	fallback: NotFound
//	constraints:
//	  handle: "[a-z0-9_]{3,16}"
//	routes:
//	  - path: /
//	    name: Dashboard
//	    component: Dashboard
//	  - path: /publish-center
//	    redirect: /publish-video
//	  - path: /publish-video
//	    name: PublishVideo
//	    component: PublishCenter
//	    props:
//	      fixedPublishType: video
//
// Documents are YAML or JSON and can be read from a file, any io.Reader or
// an S3 object. Build binds component names through a Registry and returns a
// validated router.Table.
//
// # Usage
//
//	doc, err := routeconfig.LoadFile("routes.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	table, err := doc.Build(routeconfig.Registry{
//	    "Dashboard":     dashboardView,
//	    "PublishCenter": publishCenterView,
//	})
package routeconfig
