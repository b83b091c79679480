package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/praekeltfoundation/healthcheckbot/internal/lookup"
	"github.com/praekeltfoundation/healthcheckbot/internal/model"
	"github.com/praekeltfoundation/healthcheckbot/internal/repository"
)

// provinceMapping normalizes the province spellings found in the department
// CSV exports to the codes the bot uses. KwaZulu-Natal is "nl" for
// historical reasons.
var provinceMapping = map[string]string{
	"EC": "ec", "Eastern Cape": "ec",
	"FS": "fs", "Free State": "fs",
	"GP": "gt", "GT": "gt", "Gauteng": "gt",
	"KZN": "nl", "KwaZulu-Natal": "nl",
	"LP": "lp", "Limpopo": "lp",
	"MP": "mp", "Mpumalanga": "mp",
	"NW": "nw", "North West": "nw",
	"NC": "nc", "Northern Cape": "nc",
	"WC": "wc", "Western Cape": "wc",
}

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: seed schools|marking-centres|universities <file.csv> [more.csv ...]")
		flag.PrintDefaults()
	}
	mongoURI := flag.String("mongo-uri", envOr("MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection string")
	out := flag.String("out", "university_data.yaml", "output path for the universities command")
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(2)
	}
	command, files := flag.Arg(0), flag.Args()[1:]

	switch command {
	case "schools":
		seedSchools(*mongoURI, files)
	case "marking-centres":
		seedMarkingCentres(*mongoURI, files)
	case "universities":
		seedUniversities(*out, files)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func seedSchools(mongoURI string, files []string) {
	seen := map[string]bool{}
	var schools []model.School
	for _, filename := range files {
		for _, row := range readCSV(filename) {
			school := model.School{
				ID:       primitive.NewObjectID().Hex(),
				EMIS:     row["NatEMIS"],
				Province: mustProvince(row["Province"]),
				Name:     row["Official_Institution_Name"],
			}
			key := school.EMIS + "|" + school.Province + "|" + school.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			schools = append(schools, school)
		}
	}
	log.Printf("Read %d schools", len(schools))

	ctx, db, disconnect := connect(mongoURI)
	defer disconnect()

	repo := repository.NewSchoolRepo(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal("Failed to create indexes:", err)
	}
	if err := repo.Insert(ctx, schools); err != nil {
		log.Fatal("Failed to insert schools:", err)
	}
	log.Println("Done")
}

func seedMarkingCentres(mongoURI string, files []string) {
	seen := map[string]bool{}
	var centres []model.MarkingCentre
	for _, filename := range files {
		for _, row := range readCSV(filename) {
			centre := model.MarkingCentre{
				ID:       primitive.NewObjectID().Hex(),
				Province: strings.ToLower(row["PROVINCE"]),
				Name:     row["NAME"],
			}
			key := centre.Province + "|" + centre.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			centres = append(centres, centre)
		}
	}
	log.Printf("Read %d marking centres", len(centres))

	ctx, db, disconnect := connect(mongoURI)
	defer disconnect()

	repo := repository.NewMarkingCentreRepo(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal("Failed to create indexes:", err)
	}
	if err := repo.Insert(ctx, centres); err != nil {
		log.Fatal("Failed to insert marking centres:", err)
	}
	log.Println("Done")
}

func seedUniversities(out string, files []string) {
	campuses := map[string]map[string]map[string]bool{}
	for _, filename := range files {
		for _, row := range readCSV(filename) {
			normalized := make(map[string]string, len(row))
			for k, v := range row {
				normalized[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
			}
			province := mustProvince(normalized["province"])
			institution := normalized["university"]
			if institution == "" {
				institution = normalized["tvet"]
			}
			if institution == "" {
				institution = normalized["phei"]
			}
			if campuses[province] == nil {
				campuses[province] = map[string]map[string]bool{}
			}
			if campuses[province][institution] == nil {
				campuses[province][institution] = map[string]bool{}
			}
			campuses[province][institution][normalized["campus"]] = true
		}
	}

	data := lookup.UniversityData{}
	for province, institutions := range campuses {
		data[province] = map[string][]string{}
		for institution, names := range institutions {
			list := make([]string, 0, len(names))
			for name := range names {
				list = append(list, name)
			}
			sort.Strings(list)
			data[province][institution] = list
		}
	}

	if err := lookup.WriteUniversityData(out, data); err != nil {
		log.Fatal("Failed to write university data:", err)
	}
	log.Printf("Wrote %s", out)
}

func readCSV(filename string) []map[string]string {
	f, err := os.Open(filename)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", filename, err)
	}
	defer f.Close()
	log.Printf("Reading %s...", filename)

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", filename, err)
	}
	if len(records) == 0 {
		return nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func mustProvince(raw string) string {
	code, ok := provinceMapping[raw]
	if !ok {
		log.Fatalf("Unknown province %q", raw)
	}
	return code
}

func connect(mongoURI string) (context.Context, *mongo.Database, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	return ctx, client.Database("healthcheck"), func() {
		client.Disconnect(ctx)
		cancel()
	}
}

func envOr(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
