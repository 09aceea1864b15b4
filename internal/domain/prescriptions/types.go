package prescriptions

// Route es la vía de administración de un esquema de dosificación.
type Route string

const (
	RouteOral          Route = "oral"
	RouteIntravenous   Route = "intravenous"
	RouteIntramuscular Route = "intramuscular"
	RouteSubcutaneous  Route = "subcutaneous"
	RouteTopical       Route = "topical"
	RouteInhalation    Route = "inhalation"
	RouteRectal        Route = "rectal"
	RouteOther         Route = "other"
)

var routes = []Route{
	RouteOral,
	RouteIntravenous,
	RouteIntramuscular,
	RouteSubcutaneous,
	RouteTopical,
	RouteInhalation,
	RouteRectal,
	RouteOther,
}

// Routes devuelve las vías soportadas en orden de presentación.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

func (r Route) Valid() bool {
	for _, v := range routes {
		if r == v {
			return true
		}
	}
	return false
}
