package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/snpflow/snpflow/cmd/snpflowd/handlers"
	"github.com/snpflow/snpflow/pkg/clusterer"
	configs "github.com/snpflow/snpflow/pkg/configs/backend"
	"github.com/snpflow/snpflow/pkg/domain/snpflow"
	"github.com/snpflow/snpflow/pkg/domain/token"
	"github.com/snpflow/snpflow/pkg/utils/echoutil"
	"github.com/snpflow/snpflow/pkg/utils/filewatch"
)

func main() {

	pconfig := flag.String(
		"config", os.Getenv("SNPFLOW_BACKEND_CONFIG"), "path to config file",
	)
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	flag.Parse()

	e := echo.New()
	e.Pre(middleware.AddTrailingSlash())

	// set log
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	conf, err := configs.LoadBackendConfig(*pconfig)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}

	ctx := context.Background()
	{
		// restart (by the orchestrator) when the config is updated
		wctx, cancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			log.Fatalf("can not watch configuration: %s", err)
		}
		defer cancel()
		ctx = wctx
		context.AfterFunc(ctx, func() {
			log.Panicln("config file is updated. quit to restart server.")
		})
	}

	flow, err := snpflow.Default(ctx, conf.Cluster())
	if err != nil {
		log.Fatalf("can not start snpflowd: %s", err)
	}

	dbCohort := flow.Cohort().Database()
	dbRun := flow.Run().Database()
	ik8s := flow.Run().K8s()
	dbFeature := flow.Feature().Database()
	dbCluster := flow.ClusterJob().Database()

	cconf := conf.Cluster().Clusterer()
	trainer := clusterer.New(
		cconf.Endpoint(), cconf.APIKey(),
		clusterer.WithTimeout(cconf.Timeout()),
	)

	tconf := conf.Cluster().Token()
	issuer := token.NewIssuer(tconf.Key(), tconf.TTL())

	storageRoot := conf.Cluster().Storage().Root()

	// handlers
	{
		e.POST(api("cohorts"), handlers.RegisterCohortHandler(dbCohort, dbRun))
		e.GET(api("cohorts"), handlers.FindCohortHandler(dbCohort))

		e.GET(api("cohorts/:cohortId"), handlers.GetCohortHandler(dbCohort, dbRun, "cohortId"))
		e.DELETE(api("cohorts/:cohortId"), handlers.DeleteCohortHandler(dbCohort, "cohortId"))

		e.GET(api("cohorts/:cohortId/features"), handlers.GetFeatureHandler(dbCohort, dbFeature, "cohortId"))
		e.GET(api("cohorts/:cohortId/features/token"), handlers.GetFeatureTokenHandler(dbFeature, issuer, "cohortId"))
		e.GET(api("cohorts/:cohortId/features/content"), handlers.DownloadFeatureHandler(dbFeature, issuer, storageRoot, "cohortId"))

		e.POST(api("cohorts/:cohortId/clusters"), handlers.StartClusterHandler(dbCluster, "cohortId"))
	}

	{
		e.GET(api("runs"), handlers.FindRunHandler(dbRun))
		e.GET(api("runs/:runId"), handlers.GetRunHandler(dbRun, "runId"))
		e.PUT(api("runs/:runId/abort"), handlers.AbortRunHandler(dbRun, "runId"))
		e.PUT(api("runs/:runId/retry"), handlers.RetryRunHandler(dbRun, "runId"))
		e.GET(api("runs/:runId/log"), handlers.GetRunLogHandler(dbRun, ik8s, "runId"))
	}

	{
		e.GET(api("clusters"), handlers.FindClusterHandler(dbCluster))
		e.GET(api("clusters/:clusterJobId"), handlers.GetClusterHandler(dbCluster, "clusterJobId"))
		e.GET(api("clusters/:clusterJobId/assignments"), handlers.GetAssignmentsHandler(dbCluster, trainer, "clusterJobId"))
	}

	log.Println("registered routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", conf.Port())))
}

// full path of an API route, "/" terminated to match AddTrailingSlash.
func api(p string) string {
	return path.Join("/api", p) + "/"
}
