package ingest

import (
	"context"

	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
)

func ingestSensors(ctx context.Context, env *Env) error {
	tables, err := env.Sheets("sensors", sheetClasses, sheetProperties, "sensors", "measurands", "scales")
	if err != nil {
		return err
	}
	ingestShared(env, tables)

	sensors := tables["sensors"]
	for row := range sensors.Rows {
		name := sensors.Text(row, "sensor")
		if name == "" {
			continue
		}
		pairs := []graph.Pair{
			graph.P(rdfsLabel, env.Text(name)),
			graph.P(rdfsComment, env.Text(sensors.Text(row, "definition"))),
			graph.P(hasWebsite, rdf.AnyURI(sensors.Text(row, "definition_link"))),
			graph.P(rdfsSubClassOf, ":SensingDevice"),
		}
		pairs = append(pairs, aliases(env, sensors, row, "aliases")...)
		pairs = append(pairs, equivalents(env, sensors, row, "equivalentClasses")...)
		env.Store.MergeAll(env.Class(name), pairs...)
	}

	// Each measurand row also describes the type of sensor that observes it
	measurands := tables["measurands"]
	for row := range measurands.Rows {
		name := measurands.Text(row, "measurand")
		if name == "" {
			continue
		}
		pairs := []graph.Pair{
			graph.P(rdfsLabel, env.Text(name)),
			graph.P(rdfsComment, env.Text(measurands.Text(row, "measurand_definition"))),
			graph.P(hasWebsite, rdf.AnyURI(measurands.Text(row, "measurand_definition_link"))),
			graph.P(rdfsSubClassOf, ":Measurand"),
		}
		pairs = append(pairs, equivalents(env, measurands, row, "measurand_equivalentClasses")...)
		pairs = append(pairs, aliases(env, measurands, row, "aliases")...)
		env.Store.MergeAll(env.Class(name), pairs...)

		sensorType := measurands.Text(row, "sensor_type")
		if sensorType == "" {
			continue
		}
		typeIRI := env.Class(sensorType)
		typePairs := []graph.Pair{
			graph.P(rdfsLabel, env.Text(sensorType)),
			graph.P(rdfsComment, env.Text(measurands.Text(row, "sensor_type_definition"))),
			graph.P(hasWebsite, rdf.AnyURI(measurands.Text(row, "sensor_type_definition_link"))),
			graph.P(rdfsSubClassOf, ":SensingDevice"),
		}
		typePairs = append(typePairs, equivalents(env, measurands, row, "sensor_type_equivalentClasses")...)
		env.Store.MergeAll(typeIRI, typePairs...)

		members, err := measurands.ResolveText(row, "indices_sensor", sensors, "sensor")
		if err != nil {
			return err
		}
		for _, member := range members {
			env.Store.Merge(env.Class(member), rdfsSubClassOf, typeIRI)
		}
	}

	scales := tables["scales"]
	for row := range scales.Rows {
		name := scales.Text(row, "scale")
		if name == "" {
			continue
		}
		pairs, err := parents(env, scales, row, "indices_scale", scales, "scale", ":Scale")
		if err != nil {
			return err
		}
		pairs = append(pairs,
			graph.P(rdfsLabel, env.Text(name)),
			graph.P(rdfsComment, env.Text(scales.Text(row, "definition"))),
		)
		pairs = append(pairs, equivalents(env, scales, row, "equivalentClasses")...)
		pairs = append(pairs, aliases(env, scales, row, "aliases")...)
		env.Store.MergeAll(env.Class(name), pairs...)
	}
	return ctx.Err()
}
