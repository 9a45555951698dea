package reporters

import (
	"time"

	"github.com/reusee/bridges/cmds"
	"github.com/reusee/bridges/configs"
)

type ReportInterval time.Duration

const DefaultReportInterval = time.Second

var intervalFlag = cmds.Var[time.Duration]("--report-interval", "-report-interval")

func (Module) ReportInterval(
	loader configs.Loader,
) ReportInterval {
	if *intervalFlag > 0 {
		return ReportInterval(*intervalFlag)
	}
	if str := configs.First[string](loader, "report_interval"); str != "" {
		if d, err := time.ParseDuration(str); err == nil && d > 0 {
			return ReportInterval(d)
		}
	}
	return ReportInterval(DefaultReportInterval)
}
