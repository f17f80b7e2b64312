// Package testdata generates deterministic synthetic records for
// benchmarks (spec §9 supplement, grounded on
// original_source/tests/benchmarks/_generators.py). Every generator is
// keyed off a seed plus an index so two calls with the same arguments
// always produce the same record.
package testdata

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/jsonlt/jsonlt-go/internal/jsonval"
	"github.com/jsonlt/jsonlt-go/internal/keymodel"
)

// KeyType selects which of JSONLT's three key shapes a generated record
// uses.
type KeyType int

const (
	KeyString KeyType = iota
	KeyInteger
	KeyTuple
)

// RecordSize selects how many fields (and how much text) a generated
// record carries.
type RecordSize int

const (
	SizeSmall RecordSize = iota
	SizeMedium
	SizeLarge
)

// DefaultSeed matches the original generator's default seed, so repeated
// benchmark runs compare like for like.
const DefaultSeed = 42

// SpecifierFor returns the key specifier matching keyType: a scalar "id"
// for String/Integer keys, and a compound ("org", "seq") specifier for
// Tuple keys.
func SpecifierFor(keyType KeyType) (keymodel.Specifier, error) {
	if keyType == KeyTuple {
		return keymodel.NewCompoundSpecifier([]string{"org", "seq"})
	}
	return keymodel.NewScalarSpecifier("id")
}

func applyKeyFields(record jsonval.Object, keyType KeyType, index int) {
	switch keyType {
	case KeyString:
		record["id"] = fmt.Sprintf("key_%08d", index)
	case KeyInteger:
		record["id"] = jsonval.Int64(index)
	case KeyTuple:
		record["org"] = fmt.Sprintf("org_%d", index%10)
		record["seq"] = jsonval.Int64(index)
	}
}

func generateSmall(keyType KeyType, index int, rng *rand.Rand) jsonval.Object {
	record := jsonval.Object{}
	applyKeyFields(record, keyType, index)
	record["name"] = fmt.Sprintf("Record %d", index)
	record["active"] = rng.Intn(2) == 0
	record["count"] = jsonval.Int64(rng.Intn(10001))
	record["score"] = float64(rng.Intn(10001)) / 100
	return record
}

func generateMedium(keyType KeyType, index int, rng *rand.Rand) jsonval.Object {
	record := generateSmall(keyType, index, rng)
	cities := []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix"}
	states := []string{"NY", "CA", "IL", "TX", "AZ"}
	categories := []string{"A", "B", "C", "D", "E"}
	statuses := []string{"pending", "active", "completed", "archived"}

	record["description"] = fmt.Sprintf("This is a detailed description for record %d.", index)
	tags := make(jsonval.Array, 5)
	for i := range tags {
		tags[i] = fmt.Sprintf("tag_%d", rng.Intn(100)+1)
	}
	record["tags"] = tags
	record["address"] = jsonval.Object{
		"street": fmt.Sprintf("%d Main St", rng.Intn(9999)+1),
		"city":   cities[rng.Intn(len(cities))],
		"state":  states[rng.Intn(len(states))],
		"zip":    fmt.Sprintf("%05d", rng.Intn(90000)+10000),
	}
	record["created_at"] = fmt.Sprintf("2024-%02d-%02d", rng.Intn(12)+1, rng.Intn(28)+1)
	record["updated_at"] = fmt.Sprintf("2024-%02d-%02d", rng.Intn(12)+1, rng.Intn(28)+1)
	record["priority"] = jsonval.Int64(rng.Intn(5) + 1)
	record["category"] = categories[rng.Intn(len(categories))]
	record["status"] = statuses[rng.Intn(len(statuses))]
	record["version"] = jsonval.Int64(rng.Intn(100) + 1)
	record["weight"] = float64(rng.Intn(999900)+100) / 1000
	record["rating"] = float64(rng.Intn(40)+10) / 10
	record["views"] = jsonval.Int64(rng.Intn(1000001))
	record["likes"] = jsonval.Int64(rng.Intn(100001))
	return record
}

var loremWords = []string{
	"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing",
	"elit", "sed", "do", "eiusmod", "tempor", "incididunt", "ut", "labore",
	"et", "dolore", "magna", "aliqua", "enim",
}

func generateBlob(minChars int, rng *rand.Rand) string {
	var b strings.Builder
	for b.Len() < minChars {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(loremWords[rng.Intn(len(loremWords))])
	}
	return b.String()
}

func generateLarge(keyType KeyType, index int, rng *rand.Rand) jsonval.Object {
	record := generateMedium(keyType, index, rng)
	record["long_description"] = generateBlob(1024, rng)
	record["notes"] = generateBlob(1024, rng)
	record["content"] = generateBlob(2048, rng)

	for i := 0; i < 80; i++ {
		field := fmt.Sprintf("field_%02d", i)
		switch i % 5 {
		case 0:
			record[field] = fmt.Sprintf("value_%d", rng.Intn(10000)+1)
		case 1:
			record[field] = jsonval.Int64(rng.Intn(1000001))
		case 2:
			record[field] = float64(rng.Intn(10000000)) / 10000
		case 3:
			record[field] = rng.Intn(2) == 0
		default:
			nums := make(jsonval.Array, 3)
			for j := range nums {
				nums[j] = jsonval.Int64(rng.Intn(100) + 1)
			}
			record[field] = nums
		}
	}
	return record
}

// GenerateRecord produces one deterministic record of the requested key
// type and size.
func GenerateRecord(keyType KeyType, size RecordSize, index int, seed int64) jsonval.Object {
	rng := rand.New(rand.NewSource(seed + int64(index)))
	switch size {
	case SizeMedium:
		return generateMedium(keyType, index, rng)
	case SizeLarge:
		return generateLarge(keyType, index, rng)
	default:
		return generateSmall(keyType, index, rng)
	}
}

// GenerateRecords produces count deterministic records, indexed 0..count-1.
func GenerateRecords(keyType KeyType, size RecordSize, count int, seed int64) []jsonval.Object {
	records := make([]jsonval.Object, count)
	for i := range records {
		records[i] = GenerateRecord(keyType, size, i, seed)
	}
	return records
}
