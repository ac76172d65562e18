package viewer

// crambin is a trimmed 1CRN file: header records, two residues and a water.
const crambin = `HEADER    PLANT PROTEIN                           30-APR-81   1CRN              
TITLE     WATER STRUCTURE OF A HYDROPHOBIC PROTEIN AT ATOMIC RESOLUTION.        
TITLE    2 PENTAGON RINGS OF WATER MOLECULES IN CRYSTALS OF CRAMBIN             
EXPDTA    X-RAY DIFFRACTION                                                     
REMARK   2                                                                      
REMARK   2 RESOLUTION.    1.50 ANGSTROMS.                                       
ATOM      1  N   THR A   1      17.047  14.099   3.625  1.00 13.79           N  
ATOM      2  CA  THR A   1      16.967  12.784   4.338  1.00 10.80           C  
ATOM      3  C   THR A   1      15.685  12.755   5.133  1.00  9.19           C  
ATOM      8  N   THR A   2      13.856  11.469   6.066  1.00  7.81           N  
ATOM      9  CA  THR A   2      12.635  11.106   6.771  1.00  8.37           C  
HETATM  328  C1  EOH A  66      -1.221  14.058  -3.476  1.00 32.00           C  
HETATM  329  O   HOH A  67      -0.421  14.567   2.171  1.00 20.00           O  
END                                                                             
`

// nmrModels has two models of a single-chain peptide.
const nmrModels = `HEADER    DE NOVO PROTEIN                         01-JAN-20   9XYZ              
EXPDTA    SOLUTION NMR                                                          
MODEL        1                                                                  
ATOM      1  N   GLY A   1       0.000   0.000   0.000  1.00  0.00           N  
ATOM      2  CA  GLY A   1       1.000   0.000   0.000  1.00  0.00           C  
ATOM      3  N   ALA B   1       2.000   0.000   0.000  1.00  0.00           N  
ENDMDL                                                                          
MODEL        2                                                                  
ATOM      1  N   GLY A   1       0.100   0.000   0.000  1.00  0.00           N  
ATOM      2  CA  GLY A   1       1.100   0.000   0.000  1.00  0.00           C  
ATOM      3  N   ALA B   1       2.100   0.000   0.000  1.00  0.00           N  
ENDMDL                                                                          
END                                                                             
`
