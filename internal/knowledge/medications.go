package knowledge

// BeersEntry is one potentially inappropriate medication for older adults.
type BeersEntry struct {
	Drug        string `json:"drug"`
	Risk        string `json:"risk"`
	Alternative string `json:"alternative"`
}

// InteractionPair lists the interactors that make Drug dangerous.
type InteractionPair struct {
	Drug        string   `json:"drug"`
	Interactors []string `json:"interactors"`
	Description string   `json:"description"`
}

// HighRiskDrug needs explicit monitoring when it appears on a slide.
type HighRiskDrug struct {
	Drug           string `json:"drug"`
	Recommendation string `json:"recommendation"`
}

// BeersCriteria is matched as lowercase substrings against slide text.
var BeersCriteria = []BeersEntry{
	{"diphenhydramine", "Strongly anticholinergic; confusion, constipation, urinary retention", "Non-sedating antihistamine such as loratadine"},
	{"hydroxyzine", "Strongly anticholinergic; sedation and delirium", "Non-sedating antihistamine"},
	{"amitriptyline", "Anticholinergic and sedating; orthostatic hypotension", "SSRI or SNRI"},
	{"doxepin", "Anticholinergic at doses above 6 mg/day", "Low-dose doxepin or CBT-I for insomnia"},
	{"diazepam", "Long-acting benzodiazepine; falls, fractures, cognitive impairment", "Non-drug sleep and anxiety interventions"},
	{"lorazepam", "Benzodiazepine; falls, fractures, delirium", "Non-drug interventions, SSRI for anxiety"},
	{"alprazolam", "Benzodiazepine; falls, fractures, delirium", "Non-drug interventions, SSRI for anxiety"},
	{"zolpidem", "Z-drug; falls, fractures, minimal sleep benefit", "Sleep hygiene and CBT-I"},
	{"glyburide", "Prolonged hypoglycemia", "Glipizide or DPP-4 inhibitor"},
	{"glibenclamide", "Prolonged hypoglycemia", "Glipizide or DPP-4 inhibitor"},
	{"meperidine", "Neurotoxic metabolite; not effective orally at usual doses", "Alternative opioid at reduced dose"},
	{"indomethacin", "Highest CNS adverse effects of NSAIDs; GI bleeding, renal injury", "Acetaminophen or topical NSAID"},
	{"ketorolac", "GI bleeding and acute kidney injury", "Acetaminophen"},
	{"cyclobenzaprine", "Anticholinergic, sedation, weak efficacy", "Physical therapy, acetaminophen"},
	{"methocarbamol", "Anticholinergic, sedation, weak efficacy", "Physical therapy, acetaminophen"},
	{"promethazine", "Strongly anticholinergic", "Ondansetron"},
	{"oxybutynin", "Anticholinergic; cognitive decline", "Mirabegron or behavioural therapy"},
	{"nitrofurantoin", "Pulmonary and hepatic toxicity, ineffective when CrCl < 30", "Alternative antibiotic per culture"},
	{"chlordiazepoxide", "Long-acting benzodiazepine; falls and prolonged sedation", "Non-drug interventions, short-acting agent if unavoidable"},
	{"megestrol", "Thrombosis and increased mortality", "Nutritional support"},
	{"sliding scale insulin", "Hypoglycemia without improved control", "Basal or basal-bolus regimen"},
	{"metoclopramide", "Extrapyramidal effects including tardive dyskinesia", "Domperidone where available, dietary measures"},
	{"mineral oil", "Aspiration risk", "Osmotic laxative"},
	{"chlorpromazine", "Anticholinergic, orthostasis, stroke risk in dementia", "Non-drug management of behaviours"},
	{"haloperidol", "Increased stroke and mortality risk in dementia", "Non-drug management of behaviours"},
}

// DrugInteractions are checked as pairs: both Drug and one interactor present.
var DrugInteractions = []InteractionPair{
	{"warfarin", []string{"aspirin", "ibuprofen", "naproxen", "clopidogrel", "amiodarone", "fluconazole", "metronidazole", "trimethoprim"}, "Increased bleeding risk"},
	{"digoxin", []string{"amiodarone", "verapamil", "diltiazem", "clarithromycin", "spironolactone"}, "Raised digoxin levels and toxicity"},
	{"lithium", []string{"lisinopril", "enalapril", "losartan", "hydrochlorothiazide", "ibuprofen", "naproxen"}, "Raised lithium levels"},
	{"spironolactone", []string{"lisinopril", "enalapril", "losartan", "potassium", "trimethoprim"}, "Hyperkalemia"},
	{"simvastatin", []string{"clarithromycin", "amiodarone", "diltiazem", "verapamil"}, "Myopathy and rhabdomyolysis"},
	{"methotrexate", []string{"trimethoprim", "ibuprofen", "naproxen"}, "Bone marrow suppression"},
	{"sertraline", []string{"tramadol", "linezolid", "sumatriptan"}, "Serotonin syndrome"},
	{"clopidogrel", []string{"omeprazole", "esomeprazole"}, "Reduced antiplatelet effect"},
	{"theophylline", []string{"ciprofloxacin", "clarithromycin"}, "Theophylline toxicity"},
	{"opioid", []string{"benzodiazepine", "lorazepam", "diazepam", "alprazolam", "gabapentin"}, "Respiratory depression"},
}

// HighRiskDrugs require monitoring language on the same slide.
var HighRiskDrugs = []HighRiskDrug{
	{"warfarin", "Monitor INR regularly and review bleeding risk"},
	{"digoxin", "Monitor digoxin level, renal function and potassium"},
	{"lithium", "Monitor lithium level, renal and thyroid function"},
	{"amiodarone", "Monitor thyroid, liver and pulmonary function"},
	{"methotrexate", "Monitor blood counts, liver and renal function"},
	{"insulin", "Monitor blood glucose and hypoglycemia episodes"},
	{"phenytoin", "Monitor phenytoin level and albumin"},
	{"theophylline", "Monitor theophylline level"},
	{"vancomycin", "Monitor trough level and renal function"},
}

// MonitoringTerms count as monitoring language near a high-risk drug.
var MonitoringTerms = []string{
	"monitor",
	"level",
	"inr",
	"check",
	"follow-up",
	"follow up",
	"trough",
	"surveillance",
	"lab",
}
